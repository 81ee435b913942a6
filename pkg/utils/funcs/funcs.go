package funcs

import (
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// NewTxtFuncMap 代码生成模板使用的方法集（sprig）
func NewTxtFuncMap() template.FuncMap {
	return sprig.TxtFuncMap()
}
