package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RideCreatedMessage carries only identifiers; consumers load the ride from
// the store.
type RideCreatedMessage struct {
	RideID    string    `json:"ride_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRideCreatedMessage(userID, rideID string) *RideCreatedMessage {
	return &RideCreatedMessage{
		RideID:    rideID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RideCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RideCreatedMessageFromJSON decodes a message and rejects ones missing an ID.
func RideCreatedMessageFromJSON(data []byte) (*RideCreatedMessage, error) {
	var msg RideCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RideID == "" || msg.UserID == "" {
		return nil, errors.New("ride created message missing ride_id or user_id")
	}
	return &msg, nil
}
