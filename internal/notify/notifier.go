package notify

import "github.com/Hasninemamud/AuctionCraft/internal/models"

// EmailNotifier satisfies auction.Notifier by emailing the user.
type EmailNotifier struct {
	mailer Mailer
}

func NewEmailNotifier(mailer Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func (n *EmailNotifier) Deliver(user models.User, title string, message string) error {
	return n.mailer.Send(user.Email, title, message)
}
