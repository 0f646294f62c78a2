// Package validate 封装 validator/v10：JSON 字段名、英文翻译与 notblank 标签
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"gradebook/internal/domain"
)

const notBlankTag = "notblank"

type Validator struct {
	v  *validator.Validate
	tr ut.Translator
}

var std = New()

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_en := en.New()
	tr, _ := ut.New(_en, _en).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, tr)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if s, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return false
	})
	_ = v.RegisterTranslation(notBlankTag, tr,
		func(t ut.Translator) error { return t.Add(notBlankTag, "{0} cannot be blank", true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(notBlankTag, fe.Field())
			return msg
		},
	)
	return &Validator{v: v, tr: tr}
}

// Struct 校验失败时返回 domain 的 Validation 错误，消息为各字段翻译结果
func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.Validation(err.Error())
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fe.Translate(x.tr))
	}
	return domain.Validation(strings.Join(msgs, "; "))
}

func Struct(s any) error { return std.Struct(s) }
