package domain

import (
	"fmt"

	"github.com/fd1az/liquidity-vector/internal/chain"
)

// rootRouteMinTVL is the TVL a non canonical bridge needs to be picked for a
// route touching the root chain.
const rootRouteMinTVL = 300 * million

// RouteHash folds the route string "source-dest" into an integer by summing
// its code points. It is a stable selector, not a hash with good spread.
func RouteHash(src, dst chain.Chain) int {
	sum := 0
	for _, r := range string(src) + "-" + string(dst) {
		sum += int(r)
	}
	return sum
}

// IsRootRoute reports whether the route touches the root chain.
func IsRootRoute(src, dst chain.Chain) bool {
	return src.IsRoot() || dst.IsRoot()
}

// Select picks the profile for a route. A bridge name matching a profile
// wins; otherwise the candidates for the route class are indexed by
// RouteHash. ok is false only when no profile qualifies.
func Select(profiles []Profile, src, dst chain.Chain, bridgeName string) (Profile, bool) {
	for _, p := range profiles {
		if NameMatches(p.Name, bridgeName) {
			return p, true
		}
	}

	root := IsRootRoute(src, dst)
	candidates := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if root {
			if p.TVLUSD > rootRouteMinTVL || p.Architecture == Canonical {
				candidates = append(candidates, p)
			}
			continue
		}
		if p.Architecture != Canonical {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return Profile{}, false
	}
	return candidates[RouteHash(src, dst)%len(candidates)], true
}

// EstimatedMinutes is the expected transfer time of p on a route.
func EstimatedMinutes(p Profile, src, dst chain.Chain) int {
	hash := RouteHash(src, dst)
	minutes := p.BaseTimeMin + hash%3 - 1
	if p.Architecture == Canonical && IsRootRoute(src, dst) {
		minutes = 15 + hash%10
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// EstimatedTime formats EstimatedMinutes as "~N min".
func EstimatedTime(p Profile, src, dst chain.Chain) string {
	return fmt.Sprintf("~%d min", EstimatedMinutes(p, src, dst))
}
