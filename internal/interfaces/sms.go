package interfaces

import "context"

type SMSGateway interface {
	SendOTP(ctx context.Context, phone, code string) error
}
