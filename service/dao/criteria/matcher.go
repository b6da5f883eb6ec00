package criteria

import (
	"strings"

	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
)

// Match returns true when the submission satisfies every supported parameter
func Match(s *model.Submission, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		switch parameter.Name {
		case dao.ParamStatus:
			if !matchAny(string(s.Status), parameter.Value, false) {
				return false
			}
		case dao.ParamEmail:
			if !matchAny(s.EmployeeEmail, parameter.Value, true) {
				return false
			}
		}
	}
	return true
}

func matchAny(value string, expected interface{}, fold bool) bool {
	equal := func(candidate string) bool {
		if fold {
			return strings.EqualFold(value, candidate)
		}
		return value == candidate
	}
	switch actual := expected.(type) {
	case string:
		return equal(actual)
	case []string:
		for _, candidate := range actual {
			if equal(candidate) {
				return true
			}
		}
		return false
	}
	return true
}
