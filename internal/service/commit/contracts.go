//go:generate mockgen -source=contracts.go -destination=commit_mocks_test.go -package=commit

package commit

import "context"

// ClaimReleaser frees the fast-store claim after a rejected commit.
type ClaimReleaser interface {
	Release(ctx context.Context, courierID, orderID string) (bool, error)
}
