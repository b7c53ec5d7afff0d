package menu

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// MaxCallbackData is the largest callback payload the chat platform accepts,
// in bytes.
const MaxCallbackData = 64

// Kind is the type of a button press.
type Kind int

const (
	KindDetail Kind = iota + 1
	KindSelect
	KindBack
	KindClose
	KindAccept
	KindRetry
)

const (
	dataBack   = "back"
	dataClose  = "close"
	dataAccept = "accept"
	dataRetry  = "retry"

	prefixDetail = "d"
	prefixSelect = "s"
)

// Action is a decoded callback payload. Entry-bound actions carry either
// the entry name or, when the name does not fit the payload, its index in
// the catalog plus a hash of the name it pointed at when rendered.
type Action struct {
	Kind  Kind
	Name  string
	Index int
	Hash  string
}

// Matches reports whether name is the entry an index action was rendered for.
func (a Action) Matches(name string) bool {
	return a.Hash == nameHash(name)
}

// ByIndex reports whether the action refers to its entry by position.
func (a Action) ByIndex() bool {
	return a.Name == "" && a.Index >= 0 && (a.Kind == KindDetail || a.Kind == KindSelect)
}

// DetailData encodes the payload of a list row.
func DetailData(name string, index int) string {
	return entryData(prefixDetail, name, index)
}

// SelectData encodes the payload of a Select button.
func SelectData(name string, index int) string {
	return entryData(prefixSelect, name, index)
}

// BackData, CloseData, AcceptData and RetryData are the fixed payloads.
func BackData() string   { return dataBack }
func CloseData() string  { return dataClose }
func AcceptData() string { return dataAccept }
func RetryData() string  { return dataRetry }

// entryData falls back to "<prefix>#<index>.<hash>" when the name is too
// long for the payload.
func entryData(prefix, name string, index int) string {
	data := prefix + ":" + name
	if len(data) <= MaxCallbackData {
		return data
	}
	return prefix + "#" + strconv.Itoa(index) + "." + nameHash(name)
}

func nameHash(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%08x", h.Sum32())
}

// ParseAction decodes a callback payload.
func ParseAction(data string) (Action, error) {
	switch data {
	case dataBack:
		return Action{Kind: KindBack, Index: -1}, nil
	case dataClose:
		return Action{Kind: KindClose, Index: -1}, nil
	case dataAccept:
		return Action{Kind: KindAccept, Index: -1}, nil
	case dataRetry:
		return Action{Kind: KindRetry, Index: -1}, nil
	}

	if len(data) < 2 {
		return Action{}, fmt.Errorf("unknown callback data %q", data)
	}
	var kind Kind
	switch data[:1] {
	case prefixDetail:
		kind = KindDetail
	case prefixSelect:
		kind = KindSelect
	default:
		return Action{}, fmt.Errorf("unknown callback data %q", data)
	}

	rest := data[2:]
	switch data[1] {
	case ':':
		if strings.TrimSpace(rest) == "" {
			return Action{}, fmt.Errorf("callback data %q has no entry name", data)
		}
		return Action{Kind: kind, Name: rest, Index: -1}, nil
	case '#':
		index, hash, ok := strings.Cut(rest, ".")
		if !ok || hash == "" {
			return Action{}, fmt.Errorf("callback data %q has no name hash", data)
		}
		idx, err := strconv.Atoi(index)
		if err != nil || idx < 0 {
			return Action{}, fmt.Errorf("callback data %q has a bad index", data)
		}
		return Action{Kind: kind, Index: idx, Hash: hash}, nil
	default:
		return Action{}, fmt.Errorf("unknown callback data %q", data)
	}
}
