package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Address is a postal address embedded in users and orders.
type Address struct {
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	Country    string `json:"country" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=20"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
}

// StringList is a list of strings stored as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return marshalColumn(l)
}

func (l *StringList) Scan(src interface{}) error {
	return unmarshalColumn(src, l)
}

func marshalColumn(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalColumn(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
