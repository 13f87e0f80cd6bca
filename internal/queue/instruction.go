// ABOUTME: Pipe-delimited instruction codec shared by dispatch and the companion
// ABOUTME: Decodes wire strings into a structured Instruction at the consumption boundary

package queue

import (
	"errors"
	"fmt"
	"strings"
)

// Instruction kinds.
const (
	KindTool   = "tool"
	KindSystem = "system"
)

// StandaloneExecutable marks a tool launch with no local process to spawn;
// the companion logs it as launched without running anything.
const StandaloneExecutable = "standalone"

// ActionLaunch is the only tool action currently defined.
const ActionLaunch = "launch"

const instructionPrefix = "cmd"

// ErrMalformedInstruction is returned for wire strings that do not decode.
var ErrMalformedInstruction = errors.New("malformed instruction")

// Instruction is the decoded form of a queued command string.
//
// Tool instructions carry ToolID, Executable, and Action; system
// instructions carry the rejoined SystemCommand. Fields must not contain
// the pipe separator: the encoding has no escaping, so an embedded pipe
// changes the meaning of the string.
type Instruction struct {
	Kind          string
	ToolID        string
	Executable    string
	Action        string
	SystemCommand string
}

// NewToolInstruction builds a launch instruction for a registry tool.
// An empty executable falls back to the tool id itself.
func NewToolInstruction(toolID, executable string) Instruction {
	if executable == "" {
		executable = toolID
	}
	return Instruction{
		Kind:       KindTool,
		ToolID:     toolID,
		Executable: executable,
		Action:     ActionLaunch,
	}
}

// NewSystemInstruction builds an arbitrary shell invocation instruction.
func NewSystemInstruction(command string) Instruction {
	return Instruction{Kind: KindSystem, SystemCommand: command}
}

// Encode produces the wire string:
//
//	cmd|tool|<tool_id>|<executable>|<action>
//	cmd|system|<command>
func (i Instruction) Encode() string {
	switch i.Kind {
	case KindTool:
		return strings.Join([]string{instructionPrefix, KindTool, i.ToolID, i.Executable, i.Action}, "|")
	case KindSystem:
		return strings.Join([]string{instructionPrefix, KindSystem, i.SystemCommand}, "|")
	default:
		return ""
	}
}

// ParseInstruction decodes a wire string. Malformed input returns an error
// wrapping ErrMalformedInstruction, never a panic.
func ParseInstruction(s string) (Instruction, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 2 || parts[0] != instructionPrefix {
		return Instruction{}, fmt.Errorf("%w: %q", ErrMalformedInstruction, s)
	}

	switch parts[1] {
	case KindTool:
		// Extra trailing segments are ignored for forward compatibility
		if len(parts) < 5 {
			return Instruction{}, fmt.Errorf("%w: tool instruction needs 5 segments, got %d", ErrMalformedInstruction, len(parts))
		}
		if parts[2] == "" || parts[3] == "" {
			return Instruction{}, fmt.Errorf("%w: empty tool id or executable", ErrMalformedInstruction)
		}
		return Instruction{
			Kind:       KindTool,
			ToolID:     parts[2],
			Executable: parts[3],
			Action:     parts[4],
		}, nil
	case KindSystem:
		if len(parts) < 3 {
			return Instruction{}, fmt.Errorf("%w: system instruction has no command", ErrMalformedInstruction)
		}
		// Remaining segments rejoin: the system command may itself contain pipes
		return Instruction{
			Kind:          KindSystem,
			SystemCommand: strings.Join(parts[2:], "|"),
		}, nil
	default:
		return Instruction{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedInstruction, parts[1])
	}
}
