package entity

const (
	MessageTypeText      = "text"
	MessageTypeQuotation = "quotation"
	MessageTypeSystem    = "system"
	MessageTypeImage     = "image"
)

// Quotation is the structured offer embedded in a quotation message. Price
// stays a string on the wire; Status is false until the buyer accepts.
type Quotation struct {
	ProductName string `json:"productName" firestore:"productName"`
	Details     string `json:"details" firestore:"details"`
	Images      string `json:"images" firestore:"images"` // comma-separated URLs
	Price       string `json:"price" firestore:"price"`
	Status      bool   `json:"status" firestore:"status"`
}

// Message is one entry in a room's log. SenderID is empty for system
// messages. ID and Type are immutable after creation; only Quotation.Status
// may change in place.
type Message struct {
	ID        string     `json:"id" firestore:"id"`
	SenderID  string     `json:"sender_id,omitempty" firestore:"senderId,omitempty"`
	Text      string     `json:"text,omitempty" firestore:"text,omitempty"`
	Timestamp int64      `json:"timestamp" firestore:"timestamp"` // unix seconds
	Type      string     `json:"type" firestore:"type"`
	Quotation *Quotation `json:"quotation,omitempty" firestore:"quotation,omitempty"`
}
