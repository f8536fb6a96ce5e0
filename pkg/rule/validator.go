// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
package rule

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

// 访问码与所有者码的字符集：大写字母 + 数字.
var codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建并注册 tag name 函数.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
			inst.SetTagName("rule")
			registerCodeRules(inst)

			return
		}
	}

	inst = validator.New()
	inst.SetTagName("rule")
	registerCodeRules(inst)
}

// registerCodeRules 注册访问码/所有者码相关的校验规则.
func registerCodeRules(v *validator.Validate) {
	_ = v.RegisterValidation("sharecode", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})
	v.RegisterAlias("access_code", "required,min=6,max=8,sharecode")
	v.RegisterAlias("owner_code", "required,min=8,max=16,sharecode")
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidateStruct 对结构体执行完整校验.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar(code, "access_code").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}

// ValidAccessCode 判断访问码形状是否合法（6-8 位大写字母数字）.
func ValidAccessCode(code string) bool {
	return ValidateVar(code, "access_code") == nil
}
