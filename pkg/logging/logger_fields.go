package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers for common component names
func Component(name string) Field {
	return String("component", name)
}

func Model(name string) Field {
	return String("model", name)
}

func Iterations(n int) Field {
	return Int("iterations", n)
}

func Codelength(bits float64) Field {
	return Float64("codelength", bits)
}

func Trial(id string) Field {
	return String("trial", id)
}

func Depth(level int) Field {
	return Int("level", level)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
