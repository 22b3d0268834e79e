package mail

import (
	"fmt"
	"strings"
)

// TicketDetails carries the fields rendered into a confirmation email.
type TicketDetails struct {
	Name         string
	Email        string
	Phone        string
	ReferralCode string
}

// TicketMessage composes the confirmation email sent to approved registrants.
func TicketMessage(to string, details TicketDetails) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", details.Name)
	b.WriteString("Your registration is confirmed. Here is your ticket:\n\n")
	fmt.Fprintf(&b, "  Name:  %s\n", details.Name)
	fmt.Fprintf(&b, "  Email: %s\n", details.Email)
	fmt.Fprintf(&b, "  Phone: %s\n", details.Phone)
	if details.ReferralCode != "" {
		fmt.Fprintf(&b, "  Referral code: %s\n", details.ReferralCode)
		b.WriteString("\nShare your referral code with up to 5 friends to get them in too.\n")
	}
	b.WriteString("\nShow this email at the door. See you there!\n")

	return Message{
		To:      []string{to},
		Subject: "Your ticket is confirmed",
		Body:    b.String(),
	}
}
