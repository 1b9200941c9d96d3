package crud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const placeholderPrefix = "tmp-"

// Key identifies an entity inside a Store. Server-assigned keys wrap the
// numeric id; placeholder keys carry a "tmp-" prefixed uuid and never
// collide with a server key.
type Key struct {
	id  int64
	tmp string
}

func ServerKey(id int64) Key {
	return Key{id: id}
}

func NewPlaceholder() Key {
	return Key{tmp: placeholderPrefix + uuid.NewString()}
}

func ParseKey(s string) (Key, error) {
	if strings.HasPrefix(s, placeholderPrefix) {
		if _, err := uuid.Parse(strings.TrimPrefix(s, placeholderPrefix)); err != nil {
			return Key{}, fmt.Errorf("invalid placeholder key %q", s)
		}
		return Key{tmp: s}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Key{}, fmt.Errorf("invalid key %q", s)
	}
	return ServerKey(id), nil
}

func (k Key) IsPlaceholder() bool { return k.tmp != "" }

func (k Key) IsZero() bool { return k.tmp == "" && k.id == 0 }

// ID returns the server id; ok is false for placeholders.
func (k Key) ID() (int64, bool) {
	if k.IsPlaceholder() || k.id == 0 {
		return 0, false
	}
	return k.id, true
}

func (k Key) String() string {
	if k.IsPlaceholder() {
		return k.tmp
	}
	return strconv.FormatInt(k.id, 10)
}

func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Key) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseKey(s)
	if err != nil {
		return err
	}
	*k = p
	return nil
}
