package logx

import (
	"log/slog"
	"time"
)

// Field is one key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// attr flattens errors to their message; slog would render them as "{}".
func (f Field) attr() slog.Attr {
	if err, ok := f.Value.(error); ok && err != nil {
		return slog.String(f.Key, err.Error())
	}
	return slog.Any(f.Key, f.Value)
}

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field     { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err is the conventional "err" field.
func Err(err error) Field { return Field{Key: "err", Value: err} }

// Keys shared across ingest, push and assignment logs so entries can be joined.
const (
	KeyOrder      = "order_id"
	KeyCourier    = "courier_id"
	KeyConnection = "connection_id"
	KeyTopic      = "topic"
)

func OrderID(id string) Field      { return String(KeyOrder, id) }
func CourierID(id string) Field    { return String(KeyCourier, id) }
func ConnectionID(id string) Field { return String(KeyConnection, id) }
func Topic(name string) Field      { return String(KeyTopic, name) }
