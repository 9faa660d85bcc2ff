// Package domain contains entities without logic, just meta-data
package domain

import "fmt"

const (
	SystemUser  = "System"
	UnknownUser = "Unknown"

	LeftText = "A user has left the chat"
)

func JoinedText(username string) string {
	return fmt.Sprintf("%s has joined the chat", username)
}

type ChatMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{User: SystemUser, Text: text}
}

// FileUpload is the inbound file payload; fileData is a data URI.
type FileUpload struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileData string `json:"fileData"`
}

type FileMessage struct {
	User string `json:"user"`
	FileUpload
}

type RoomInfo struct {
	Name        RoomName `json:"name"`
	MemberCount int      `json:"member_count"`
}
