package model

// Attachment describes a single email attachment that has been written
// to local disk by the mail source.
type Attachment struct {
	// Filename is the original attachment filename including extension.
	Filename string `json:"filename"`

	// ContentType is the MIME type declared by the mail message.
	ContentType string `json:"content_type"`

	// Path is the local filesystem path where the mail source saved
	// the attachment bytes.
	Path string `json:"path"`

	// Size is the attachment size in bytes.
	Size int64 `json:"size"`
}

// EmailMessage represents one ingested email message.
// The mail source fills in all fields before the message enters the
// processing pipeline; nothing here is mutated downstream.
type EmailMessage struct {
	// ID is the mail-store identifier of the message.
	ID string `json:"id"`

	// Subject is the decoded message subject.
	Subject string `json:"subject"`

	// Sender is the From address of the message.
	Sender string `json:"sender"`

	// Date is the Date header of the message as received.
	// Kept as a string because mail dates arrive in a variety of formats
	// and the report only displays the value.
	Date string `json:"date"`

	// Body is the plain-text message body. HTML bodies are flattened
	// to text by the mail source before this struct is built.
	Body string `json:"body"`

	// Attachments lists the message attachments in the order they
	// appear in the MIME structure.
	Attachments []Attachment `json:"attachments"`
}
