package shared

import "fmt"

// PriceAdjustmentLockKey names the advisory lock serialising writers of one
// adjustment kind.
func PriceAdjustmentLockKey(kind string) string {
	return fmt.Sprintf("pricing:adjustment:%s:lock", kind)
}

