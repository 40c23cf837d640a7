package domain

import (
	"fmt"
	"strings"
)

// Mode 是文件落盘方式：复制（保留源文件）或移动（源文件被迁走）。
type Mode int

const (
	ModeCopy Mode = iota
	ModeMove
)

func (m Mode) String() string {
	if m == ModeMove {
		return "move"
	}
	return "copy"
}

// Verb 返回进行时动词，用于日志与通知。
func (m Mode) Verb() string {
	if m == ModeMove {
		return "moving"
	}
	return "copying"
}

// ParseMode 解析 "copy" / "move"（大小写不敏感）；空串视为 copy。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "copy":
		return ModeCopy, nil
	case "move":
		return ModeMove, nil
	default:
		return ModeCopy, fmt.Errorf("mode 只能是 copy 或 move，实际是 %q", s)
	}
}
