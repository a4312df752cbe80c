package logging

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field is a key-value pair attached to a log entry.  Values of the common
// concrete types are encoded without reflection.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Int64(key string, val int64) Field            { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// Amount logs a money value in its exact decimal form.
func Amount(key string, val decimal.Decimal) Field { return Field{Key: key, Value: val.String()} }

// Err logs err under "error".  A nil err renders as "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

//Personal.AI order the ending
