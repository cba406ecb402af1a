package enums

import "fmt"

// FriendshipStatus tracks the lifecycle of a friendship request.
type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusDeclined FriendshipStatus = "declined"
)

var validFriendshipStatuses = []FriendshipStatus{
	FriendshipStatusPending,
	FriendshipStatusAccepted,
	FriendshipStatusDeclined,
}

// String implements fmt.Stringer.
func (f FriendshipStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FriendshipStatus.
func (f FriendshipStatus) IsValid() bool {
	for _, candidate := range validFriendshipStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFriendshipStatus converts raw input into a FriendshipStatus.
func ParseFriendshipStatus(value string) (FriendshipStatus, error) {
	for _, candidate := range validFriendshipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid friendship status %q", value)
}
