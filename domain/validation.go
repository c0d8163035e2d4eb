package domain

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MaxSkillLength bounds a single normalized skill.
const MaxSkillLength = 50

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("skills", ValidateSkills); err != nil {
			logrus.Errorf("failed to register skills validation: %v", err)
		}
	}
}

// ValidateSkills accepts a string list holding at least one non-blank skill, none longer
// than MaxSkillLength once normalized.
func ValidateSkills(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	skills := NewSkills(raw)
	if len(skills) == 0 {
		return false
	}
	for _, s := range skills {
		if len([]rune(s)) > MaxSkillLength {
			return false
		}
	}
	return true
}
