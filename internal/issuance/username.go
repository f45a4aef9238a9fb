package issuance

import (
	"strings"

	"github.com/google/uuid"
)

const directSalePrefix = "ds-"

// generateDirectSaleUsername yields a unique guest pass username in the
// direct-sale namespace, e.g. "ds-9f1c2ab4e7d0".
func generateDirectSaleUsername() string {
	compact := strings.ReplaceAll(uuid.NewString(), "-", "")
	return directSalePrefix + compact[:12]
}
