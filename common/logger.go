package common

import (
	"stdpbench/status"
)

// MT: Constant after initialization; thread-safe
var Log status.Logger = status.Default()
