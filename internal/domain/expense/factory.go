package expense

import (
	"finlink/internal/codef"
)

// FromHistory maps raw aggregator history entries onto candidate
// transactions. An entry with a positive outflow becomes an unclassified
// withdrawal of that magnitude; a positive inflow becomes income; an entry
// with neither moves no money and is skipped. Entries whose date cannot be
// parsed are skipped too, never inserted with an undefined timestamp.
func FromHistory(userID, assetID int64, entries []codef.HistoryEntry) []Transaction {
	txs := make([]Transaction, 0, len(entries))

	for _, entry := range entries {
		withdrawal := codef.AmountToInt64(entry.Out)
		deposit := codef.AmountToInt64(entry.In)

		var categoryID, amount int64
		switch {
		case withdrawal > 0:
			categoryID = CategoryUnclassified
			amount = withdrawal
		case deposit > 0:
			categoryID = CategoryIncome
			amount = deposit
		default:
			continue
		}

		transactedAt, ok := codef.ParseOccurrence(entry.Date, entry.Time)
		if !ok {
			continue
		}

		tx := Transaction{
			UserID:       userID,
			AssetID:      assetID,
			CategoryID:   categoryID,
			Amount:       amount,
			Description:  entry.Description,
			TransactedAt: transactedAt,
		}
		if entry.TransactionID != "" {
			externalID := entry.TransactionID
			tx.ExternalID = &externalID
		}

		txs = append(txs, tx)
	}

	return txs
}
