package errors

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
)

type Error struct {
	Code    uint                   `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty" rlp:"-"`
}

func (o *Error) Serialize() (b []byte, err error) {
	b, err = json.Marshal(o)
	return
}

func (o *Error) Error() string {
	b, _ := o.Serialize()
	return string(b)
}

// Is reports whether target carries the same code, so a cloned error with
// extra data still matches its pre-defined counterpart.
func (o *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || o == nil || t == nil {
		return false
	}
	return o.Code == t.Code
}

func (o *Error) SetData(k string, v interface{}) *Error {
	if o.Data == nil {
		o.Data = map[string]interface{}{}
	}
	o.Data[k] = v

	return o
}

func (o *Error) Clone() *Error {
	var n Error
	n = *o

	n.Data = map[string]interface{}{}
	for k, v := range o.Data {
		n.Data[k] = v
	}

	return &n
}

func (o *Error) EncodeRLP(w io.Writer) (err error) {
	if o == nil {
		return rlp.Encode(w, []uint{})
	}

	if len(o.Data) > 0 {
		var keys []string
		for k := range o.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var d [][2]string
		for _, k := range keys {
			b, _ := json.Marshal(o.Data[k])
			d = append(d, [2]string{k, string(b)})
		}
		if err = rlp.Encode(w, d); err != nil {
			return
		}
	}

	return rlp.Encode(w, struct {
		Code    uint
		Message string
	}{
		Code:    o.Code,
		Message: o.Message,
	})
}

func NewError(code uint, message string) *Error {
	return &Error{Code: code, Message: message, Data: map[string]interface{}{}}
}
