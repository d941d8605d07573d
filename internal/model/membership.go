package model

// MembershipTier describes a paid membership level.  Tiers are display data:
// the reservation engine prices "member" tickets with its own fixed rule.
type MembershipTier struct {
	ID                   uint64 `json:"id"`
	Name                 string `json:"name"`
	MonthlyPrice         Money  `json:"monthlyPrice"`
	Description          string `json:"description"`
	DiscountPercentage   int    `json:"discountPercentage"`
	PriorityBookingHours int    `json:"priorityBookingHours"`
	GuestPasses          int    `json:"guestPasses"`
	FeaturedTier         bool   `json:"featuredTier"`
}
