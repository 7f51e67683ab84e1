package sim

import (
	"log"
)

// LogHookBase provides the common logic for hooks that write into a
// log.Logger
type LogHookBase struct {
	*log.Logger
}
