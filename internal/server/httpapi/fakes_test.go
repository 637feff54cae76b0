package httpapi

import (
	"context"

	"github.com/emergqr/emergqr/internal/common"
	"github.com/emergqr/emergqr/internal/server/models"
	"github.com/emergqr/emergqr/internal/server/services"
)

const validToken = "good-token"

type fakeService struct {
	client *models.Client
	err    error

	authErr error

	LastEmail       string
	LastPassword    string
	LastName        string
	LastUUID        string
	LastCurrent     string
	LastNext        string
	LastFilename    string
	LastContentType string
	LastData        []byte
	LastQRToken     string
	Calls           int
}

func newFakeService() *fakeService {
	return &fakeService{client: &models.Client{
		ID: 1, UUID: "u-1", Email: "ana@example.com", Name: "Ana", Phone: "+100",
		QRToken: "qr-1", IsActive: true,
	}}
}

func (f *fakeService) result() (*services.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.AuthResult{AccessToken: validToken, Client: f.client}, nil
}

func (f *fakeService) Register(_ context.Context, email, password, name string) (*services.AuthResult, error) {
	f.Calls++
	f.LastEmail, f.LastPassword, f.LastName = email, password, name
	return f.result()
}

func (f *fakeService) Login(_ context.Context, email, password string) (*services.AuthResult, error) {
	f.Calls++
	f.LastEmail, f.LastPassword = email, password
	return f.result()
}

func (f *fakeService) ChangePassword(_ context.Context, clientUUID, current, next string) (*services.AuthResult, error) {
	f.Calls++
	f.LastUUID, f.LastCurrent, f.LastNext = clientUUID, current, next
	return f.result()
}

func (f *fakeService) Profile(_ context.Context, clientUUID string) (*models.Client, error) {
	f.Calls++
	f.LastUUID = clientUUID
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func (f *fakeService) UploadAvatar(_ context.Context, clientUUID, filename, contentType string, data []byte) (*models.Client, error) {
	f.Calls++
	f.LastUUID, f.LastFilename, f.LastContentType, f.LastData = clientUUID, filename, contentType, data
	if f.err != nil {
		return nil, f.err
	}
	c := *f.client
	c.AvatarURL = "http://s3.local/avatars/" + filename
	return &c, nil
}

func (f *fakeService) QR(_ context.Context, clientUUID string) (string, string, error) {
	f.Calls++
	f.LastUUID = clientUUID
	if f.err != nil {
		return "", "", f.err
	}
	return f.client.QRToken, "https://emergqr.example/emergency/" + f.client.QRToken, nil
}

func (f *fakeService) RegenerateQR(_ context.Context, clientUUID string) (string, string, error) {
	f.Calls++
	f.LastUUID = clientUUID
	if f.err != nil {
		return "", "", f.err
	}
	f.client.QRToken = "qr-2"
	return "qr-2", "https://emergqr.example/emergency/qr-2", nil
}

func (f *fakeService) Emergency(_ context.Context, qrToken string) (*models.EmergencyView, error) {
	f.Calls++
	f.LastQRToken = qrToken
	if qrToken != f.client.QRToken {
		return nil, common.ErrorNotFound
	}
	v := f.client.Emergency()
	return &v, nil
}

func (f *fakeService) Authenticate(token string) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	if token != validToken {
		return "", common.ErrInvalidToken
	}
	return f.client.UUID, nil
}
