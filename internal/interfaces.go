package internal

import (
	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/tools"
)

// ClientInterface is the OPS handle held by Services.
type ClientInterface interface {
	tools.PatentClient
	Middlewares() []string
}
