package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"skillbridge/common"
)

// Skills is a normalized skill set stored as a JSON array.
type Skills []string

func NewSkills(skills []string) Skills {
	return common.NormalizeTags(skills)
}

func (s Skills) Intersects(other Skills) bool {
	return common.TagsIntersect(s, other)
}

func (s Skills) Value() (driver.Value, error) {
	if s == nil {
		s = Skills{}
	}
	jsonBytes, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (s *Skills) Scan(v interface{}) error {
	if v == nil {
		*s = Skills{}
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	if jsonString == "" {
		*s = Skills{}
		return nil
	}
	return json.Unmarshal([]byte(jsonString), s)
}
