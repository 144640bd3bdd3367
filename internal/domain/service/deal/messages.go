package service

import (
	"fmt"

	"tg_escrow/internal/domain/entity"
)

// Prompts — вопросы анкеты в порядке entity.FieldNames.
var Prompts = []string{
	"📌 Deal of?",
	"💰 Total Amount?",
	"⏱ Time to Complete Deal?",
	"🏦 Payment from which Bank (compulsory)?",
	"🔁 Seller Username?",
	"🛒 Buyer Username?",
}

const (
	msgDealPosted    = "✅ Deal posted to group."
	msgBothConfirmed = "✅ Both confirmed.\nAdmin will be notified to claim."
	msgBroadcastSent = "✅ Broadcast sent."
)

func dealCard(d entity.Deal) string {
	return fmt.Sprintf(
		"🆕 <b>New INR Deal Created!</b>\n\n"+
			"📝 <b>Deal Of:</b> %s\n"+
			"💰 <b>Amount:</b> ₹%s\n"+
			"⏱ <b>Time:</b> %s\n"+
			"🏦 <b>Bank:</b> %s\n"+
			"👤 <b>Seller:</b> %s\n"+
			"👤 <b>Buyer:</b> %s\n\n"+
			"<b>Deal ID:</b> %s",
		d.Fields["dealOf"],
		d.Fields["amount"],
		d.Fields["time"],
		d.Fields["bank"],
		d.Fields["seller"],
		d.Fields["buyer"],
		d.ID,
	)
}

func dealSummary(d entity.Deal) string {
	return fmt.Sprintf(
		"📄 Deal Found:\n🆔 %s\n👤 Buyer: %s\n👤 Seller: %s\n💰 Amount: ₹%s\nStatus: %s",
		d.ID,
		d.Fields["buyer"],
		d.Fields["seller"],
		d.Fields["amount"],
		d.State,
	)
}

func confirmedStatus(role entity.Role) string {
	if role == entity.RoleSeller {
		return "☑️ Seller confirmed.\nWaiting for other party."
	}

	return "☑️ Buyer confirmed.\nWaiting for other party."
}

func claimRequest(dealID string) string {
	return fmt.Sprintf("🚨 New deal ready for admin claim:\n🆔 <b>%s</b>", dealID)
}

func claimedReply(dealID, admin string) string {
	return fmt.Sprintf("✅ Deal %s claimed by @%s", dealID, admin)
}

func claimedAnnounce(dealID, admin string) string {
	return fmt.Sprintf("🔒 Deal %s claimed by admin @%s", dealID, admin)
}
