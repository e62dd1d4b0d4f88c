package domain

// ReconstructRefundItems rebuilds full line items for a refund payload.
//
// References embedding a full line item are used directly. Bare references
// are joined against the parent order's line items by exact id; references
// that cannot be joined are dropped without error. Output order follows the
// refund payload's own ordering.
func ReconstructRefundItems(refs []RefundLineItemRef, order *Order) []LineItem {
	items := make([]LineItem, 0, len(refs))

	for _, ref := range refs {
		if ref.LineItem != nil {
			items = append(items, *ref.LineItem)
			continue
		}
		if order == nil {
			continue
		}
		for _, li := range order.LineItems {
			if li.ID == ref.LineItemID {
				items = append(items, li)
				break
			}
		}
	}

	return items
}
