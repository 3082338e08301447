package market

import "strconv"

const (
	TopicNoteListed    = "note.listed"
	TopicNotePurchased = "note.purchased"
)

// Partition key = note id, so events about one note keep their order.
func PartitionKey(noteID int64) []byte {
	return []byte(strconv.FormatInt(noteID, 10))
}
