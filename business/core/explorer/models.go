package explorer

import "github.com/ardanlabs/simwallet/business/sys/backend"

// TransactionRecord is a single transfer inside a block.
type TransactionRecord struct {
	Sender    string  `json:"sender" yaml:"sender"`
	Recipient string  `json:"recipient" yaml:"recipient"`
	Amount    float64 `json:"amount" yaml:"amount"`
}

// BlockRecord represents one mined block. The client trusts the backend for
// the linkage between Hash and PreviousHash.
type BlockRecord struct {
	Index        int                 `json:"index" yaml:"index"`
	Hash         string              `json:"hash" yaml:"hash"`
	PreviousHash string              `json:"previous_hash" yaml:"previous_hash"`
	Nonce        int64               `json:"nonce" yaml:"nonce"`
	Timestamp    float64             `json:"timestamp" yaml:"timestamp"`
	Transactions []TransactionRecord `json:"transactions" yaml:"transactions"`
}

func toBlockRecord(blk backend.Block) BlockRecord {
	trans := make([]TransactionRecord, len(blk.Transactions))
	for i, tx := range blk.Transactions {
		trans[i] = TransactionRecord{
			Sender:    tx.Sender,
			Recipient: tx.Recipient,
			Amount:    tx.Amount,
		}
	}

	return BlockRecord{
		Index:        blk.Index,
		Hash:         blk.Hash,
		PreviousHash: blk.PreviousHash,
		Nonce:        blk.Nonce,
		Timestamp:    blk.Timestamp,
		Transactions: trans,
	}
}

func toBlockRecords(blks []backend.Block) []BlockRecord {
	records := make([]BlockRecord, len(blks))
	for i, blk := range blks {
		records[i] = toBlockRecord(blk)
	}
	return records
}
