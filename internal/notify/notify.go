// Package notify は荷物・預かり品の到着通知を組み立てる。
//
// 通知は追跡される配送チャネルではなく、プラットフォームの外部
// メッセージングリンク（電話番号宛てのチャット作成画面を開くURL）に
// 本文を詰めて手渡すだけのfire-and-forgetなUI上の便宜。サーバーが
// このリンクを辿ることはない。
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hitoshi/gatehouse/internal/model"
)

// messageLinkBase は外部メッセージングのディープリンクのベースURL。
const messageLinkBase = "https://wa.me/"

// PackageMessage は荷物到着通知の本文を組み立てる。
// 空のフィールドの行は出力しない。
func PackageMessage(pkg model.Package) string {
	var b strings.Builder

	b.WriteString("FRONT DESK NOTICE\n")
	b.WriteString("A package addressed to your unit has arrived.\n\n")

	fmt.Fprintf(&b, "Unit: %s", pkg.Unit)
	if pkg.Block != "" {
		fmt.Fprintf(&b, " - Block %s", pkg.Block)
	}
	b.WriteString("\n")

	if pkg.CompanyName != "" {
		fmt.Fprintf(&b, "Carrier: %s\n", pkg.CompanyName)
	}
	if pkg.Sender != "" {
		fmt.Fprintf(&b, "Sender: %s\n", pkg.Sender)
	}
	if pkg.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", pkg.Description)
	}
	if pkg.TrackingCode != "" {
		fmt.Fprintf(&b, "Tracking code: %s\n", pkg.TrackingCode)
	}
	if pkg.PickupCode != "" {
		fmt.Fprintf(&b, "Pickup code: %s\n", pkg.PickupCode)
	}
	if pkg.ReceivedAt != "" {
		fmt.Fprintf(&b, "Received at: %s\n", pkg.ReceivedAt)
	}

	b.WriteString("\nPlease stop by the front desk to pick it up.\n")
	b.WriteString("Front Desk Team")

	return b.String()
}

// ItemMessage は荷物以外の預かり品の到着通知の本文を組み立てる。
func ItemMessage(item model.ReceivedItem) string {
	var b strings.Builder

	b.WriteString("FRONT DESK NOTICE\n")
	b.WriteString("An item left for you is being held at the front desk.\n\n")

	if item.Unit != "" {
		fmt.Fprintf(&b, "Unit: %s", item.Unit)
		if item.Block != "" {
			fmt.Fprintf(&b, " - Block %s", item.Block)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Item: %s\n", item.ItemDescription)
	if item.Quantity > 1 {
		fmt.Fprintf(&b, "Quantity: %d\n", item.Quantity)
	}
	if item.OutsideName != "" {
		fmt.Fprintf(&b, "Left by: %s\n", item.OutsideName)
	}

	b.WriteString("\nPlease stop by the front desk to pick it up.\n")
	b.WriteString("Front Desk Team")

	return b.String()
}

// DigitsOnly は電話番号から数字以外を取り除く。
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MessageLink は電話番号と本文からチャット作成画面を開くURLを組み立てる。
// 電話番号に数字が1桁も無ければエラーを返す。
func MessageLink(phone, message string) (string, error) {
	digits := DigitsOnly(phone)
	if digits == "" {
		return "", model.NewPhoneMissingError()
	}
	return messageLinkBase + digits + "?text=" + url.QueryEscape(message), nil
}
