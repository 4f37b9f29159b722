package apiv1

import "time"

// Pong defines model for Pong.
type Pong struct {
	Ping string `json:"ping"`
}

// Error defines model for Error.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Address defines model for Address.
type Address struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	NIF          string    `json:"nif"`
	ZipCode      string    `json:"zipCode"`
	Address      string    `json:"address"`
	Number       string    `json:"number"`
	Complement   *string   `json:"complement,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AddressList defines model for AddressList.
type AddressList struct {
	Addresses []Address `json:"addresses"`
}
