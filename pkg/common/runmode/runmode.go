package runmode

const (
	// Release 正式环境
	Release = "release"
	// Test 测试环境
	Test = "test"
	// Debug 开发调试
	Debug = "debug"
)
