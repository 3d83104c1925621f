package commands

// commandVariant is a handler bound at a commandOption
type commandVariant struct {
	path        string
	description string
	params      []Parameter
	invoke      HandlerFunc
	owner       *Node
	priority    int
	seq         uint64
}

// handleExceptionVariant is a registered exception handler. A nil owner is the manager-global scope.
type handleExceptionVariant struct {
	matches  []ErrorMatcher
	handle   ExceptionHandlerFunc
	owner    *Node
	priority int
	seq      uint64
}

func (v *handleExceptionVariant) accepts(err error) bool {
	if len(v.matches) == 0 {
		return true
	}
	for _, m := range v.matches {
		if m.MatchError(err) {
			return true
		}
	}

	return false
}

// registeredNode is a node added under a label, with its node-level gate
type registeredNode struct {
	node         *Node
	requirements RequirementSet
}

// registeredCommand is everything registered under one label. Nodes sharing a label share its root
// and exception handler list.
type registeredCommand struct {
	label      string
	aliases    []string
	root       *commandBranchProcessor
	nodes      []registeredNode
	exceptions []*handleExceptionVariant
}

func newRegisteredCommand(label string) *registeredCommand {
	return &registeredCommand{
		label: label,
		root:  newCommandBranchProcessor(),
	}
}

func (rc *registeredCommand) addException(v *handleExceptionVariant) {
	rc.exceptions = insertException(rc.exceptions, v)
}

func insertException(list []*handleExceptionVariant, v *handleExceptionVariant) []*handleExceptionVariant {
	i := 0
	for i < len(list) && list[i].priority >= v.priority {
		i++
	}
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = v

	return list
}
