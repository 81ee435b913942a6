package runtime

import (
	"github.com/narasux/vidvote/pkg/common/runmode"
)

// 以下变量值可通过 --ldflags 的方式修改
var (
	// RunMode 运行模式，可选值为 release，test，debug；作为 GIN_RUN_MODE 的默认值
	RunMode = runmode.Release
)
