package notify

import (
	"strconv"
	"strings"
)

// CommandKind enumerates every inbound command shape the dispatcher
// understands.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdApprove
	CmdReject
	CmdRejectAll
	CmdPending
	CmdRefresh
	CmdBalance
	CmdClosePosition
	CmdIncreasePosition
	CmdDecreasePosition
)

// Command is one parsed operator instruction.
type Command struct {
	Kind CommandKind
	// Size is the approve override in USD; zero means keep the
	// proposed size.
	Size float64
	// Index selects an open position for the close/increase/decrease
	// callbacks.
	Index int
	// Raw is the original text, kept for the unrecognized reply.
	Raw string
}

// ParseCommand turns a chat message into a Command. Unrecognized input
// parses to CmdUnknown rather than being dropped.
func ParseCommand(text string) Command {
	raw := text
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return Command{Kind: CmdUnknown, Raw: raw}
	}

	switch fields[0] {
	case "approve":
		cmd := Command{Kind: CmdApprove, Raw: raw}
		if len(fields) > 1 {
			size, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || size <= 0 {
				return Command{Kind: CmdUnknown, Raw: raw}
			}
			cmd.Size = size
		}
		return cmd
	case "reject":
		if len(fields) > 1 && fields[1] == "all" {
			return Command{Kind: CmdRejectAll, Raw: raw}
		}
		return Command{Kind: CmdReject, Raw: raw}
	case "pending":
		return Command{Kind: CmdPending, Raw: raw}
	case "refresh":
		return Command{Kind: CmdRefresh, Raw: raw}
	case "balance":
		return Command{Kind: CmdBalance, Raw: raw}
	}
	return Command{Kind: CmdUnknown, Raw: raw}
}

// ParseCallback turns a button-callback payload into a Command. The
// position actions are a letter plus the open-position index: c2
// closes, i2 increases, d2 decreases.
func ParseCallback(data string) Command {
	raw := data
	data = strings.TrimSpace(strings.ToLower(data))

	switch data {
	case "refresh":
		return Command{Kind: CmdRefresh, Raw: raw}
	case "balance":
		return Command{Kind: CmdBalance, Raw: raw}
	case "pending":
		return Command{Kind: CmdPending, Raw: raw}
	}

	if len(data) < 2 {
		return Command{Kind: CmdUnknown, Raw: raw}
	}
	index, err := strconv.Atoi(data[1:])
	if err != nil || index < 0 {
		return Command{Kind: CmdUnknown, Raw: raw}
	}

	switch data[0] {
	case 'c':
		return Command{Kind: CmdClosePosition, Index: index, Raw: raw}
	case 'i':
		return Command{Kind: CmdIncreasePosition, Index: index, Raw: raw}
	case 'd':
		return Command{Kind: CmdDecreasePosition, Index: index, Raw: raw}
	}
	return Command{Kind: CmdUnknown, Raw: raw}
}
