package tuple

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// 带类型标记的编码，保证解码后与原元组 Equal。
// 仅支持标量类型，其他类型返回 ErrUnsupportedValue。

// ErrUnsupportedValue 值的类型无法编码
type ErrUnsupportedValue struct {
	Index int
	Type  string
}

func (e *ErrUnsupportedValue) Error() string {
	return fmt.Sprintf("tuple: value %d of type %s cannot be encoded", e.Index, e.Type)
}

type encodedValue struct {
	T string `json:"t"`
	V string `json:"v,omitempty"`
}

// Marshal 把元组编码为 JSON
func Marshal(t Tuple) ([]byte, error) {
	items := make([]encodedValue, len(t.values))
	for i, v := range t.values {
		ev, err := encodeValue(v)
		if err != nil {
			return nil, &ErrUnsupportedValue{Index: i, Type: fmt.Sprintf("%T", v)}
		}
		items[i] = ev
	}
	return json.Marshal(items)
}

// Unmarshal 从 Marshal 的输出还原元组
func Unmarshal(data []byte) (Tuple, error) {
	var items []encodedValue
	if err := json.Unmarshal(data, &items); err != nil {
		return Tuple{}, fmt.Errorf("tuple: decode: %w", err)
	}
	values := make([]any, len(items))
	for i, item := range items {
		v, err := decodeValue(item)
		if err != nil {
			return Tuple{}, fmt.Errorf("tuple: decode value %d: %w", i, err)
		}
		values[i] = v
	}
	return Tuple{values: values}, nil
}

// Key 规范编码，可作为外部存储中的成员键
func (t Tuple) Key() (string, error) {
	data, err := Marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeValue(v any) (encodedValue, error) {
	switch val := v.(type) {
	case nil:
		return encodedValue{T: "nil"}, nil
	case bool:
		return encodedValue{T: "bool", V: strconv.FormatBool(val)}, nil
	case string:
		return encodedValue{T: "string", V: val}, nil
	case int:
		return encodedValue{T: "int", V: strconv.FormatInt(int64(val), 10)}, nil
	case int8:
		return encodedValue{T: "int8", V: strconv.FormatInt(int64(val), 10)}, nil
	case int16:
		return encodedValue{T: "int16", V: strconv.FormatInt(int64(val), 10)}, nil
	case int32:
		return encodedValue{T: "int32", V: strconv.FormatInt(int64(val), 10)}, nil
	case int64:
		return encodedValue{T: "int64", V: strconv.FormatInt(val, 10)}, nil
	case uint:
		return encodedValue{T: "uint", V: strconv.FormatUint(uint64(val), 10)}, nil
	case uint8:
		return encodedValue{T: "uint8", V: strconv.FormatUint(uint64(val), 10)}, nil
	case uint16:
		return encodedValue{T: "uint16", V: strconv.FormatUint(uint64(val), 10)}, nil
	case uint32:
		return encodedValue{T: "uint32", V: strconv.FormatUint(uint64(val), 10)}, nil
	case uint64:
		return encodedValue{T: "uint64", V: strconv.FormatUint(val, 10)}, nil
	case float32:
		if val == 0 {
			val = 0
		}
		return encodedValue{T: "float32", V: strconv.FormatFloat(float64(val), 'g', -1, 32)}, nil
	case float64:
		if val == 0 {
			val = 0
		}
		return encodedValue{T: "float64", V: strconv.FormatFloat(val, 'g', -1, 64)}, nil
	default:
		return encodedValue{}, fmt.Errorf("unsupported type %T", v)
	}
}

func decodeValue(ev encodedValue) (any, error) {
	switch ev.T {
	case "nil":
		return nil, nil
	case "bool":
		return strconv.ParseBool(ev.V)
	case "string":
		return ev.V, nil
	case "int":
		n, err := strconv.ParseInt(ev.V, 10, strconv.IntSize)
		return int(n), err
	case "int8":
		n, err := strconv.ParseInt(ev.V, 10, 8)
		return int8(n), err
	case "int16":
		n, err := strconv.ParseInt(ev.V, 10, 16)
		return int16(n), err
	case "int32":
		n, err := strconv.ParseInt(ev.V, 10, 32)
		return int32(n), err
	case "int64":
		return strconv.ParseInt(ev.V, 10, 64)
	case "uint":
		n, err := strconv.ParseUint(ev.V, 10, strconv.IntSize)
		return uint(n), err
	case "uint8":
		n, err := strconv.ParseUint(ev.V, 10, 8)
		return uint8(n), err
	case "uint16":
		n, err := strconv.ParseUint(ev.V, 10, 16)
		return uint16(n), err
	case "uint32":
		n, err := strconv.ParseUint(ev.V, 10, 32)
		return uint32(n), err
	case "uint64":
		return strconv.ParseUint(ev.V, 10, 64)
	case "float32":
		f, err := strconv.ParseFloat(ev.V, 32)
		return float32(f), err
	case "float64":
		return strconv.ParseFloat(ev.V, 64)
	default:
		return nil, fmt.Errorf("unknown type tag %q", ev.T)
	}
}
