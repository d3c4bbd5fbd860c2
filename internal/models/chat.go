package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exchange is one chat round trip stored in MongoDB.
type Exchange struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	UserID    string             `json:"user_id"    bson:"user_id"`
	Message   string             `json:"message"    bson:"message"`
	Response  string             `json:"response"   bson:"response"`
	Model     string             `json:"model"      bson:"model"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ChatResponse is the JSON reply for a successful POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryResponse is the JSON reply for GET /chat/history.
type HistoryResponse struct {
	History []Exchange `json:"history"`
}
