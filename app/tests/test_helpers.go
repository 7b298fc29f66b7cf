package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/stretchr/testify/mock"

	"xvo/internal/models"
)

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Append(ctx context.Context, senderID, receiverID int, ciphertext string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, ciphertext)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MockMessageStore) All(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageStore) RemoveByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account models.Account) (models.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(models.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Append(ctx context.Context, post models.Post) (models.Post, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(models.Post), args.Error(1)
}

func (m *MockPostRepository) All(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) RemoveByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTypingTracker struct {
	mock.Mock
}

func (m *MockTypingTracker) SetTyping(senderID, receiverID int, isTyping bool) error {
	args := m.Called(senderID, receiverID, isTyping)
	return args.Error(0)
}

func (m *MockTypingTracker) IsTyping(senderID, receiverID int) (bool, error) {
	args := m.Called(senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) GenerateFromPassword(password []byte, cost int) ([]byte, error) {
	args := m.Called(password, cost)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockHasher) CompareHashAndPassword(storedPassword []byte, userPassword []byte) error {
	args := m.Called(storedPassword, userPassword)
	return args.Error(0)
}

func (m *MockHasher) DefaultCost() int {
	return m.Called().Int(0)
}

// FakeCipher is a transparent stand-in for the AES codec: ciphertexts are
// recognizable in assertions and decryption is exact.
type FakeCipher struct {
}

func (f *FakeCipher) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (f *FakeCipher) Decrypt(ciphertext string) string {
	return strings.TrimPrefix(ciphertext, "enc:")
}

func CreateTestRequest(url, method string, body interface{}) *http.Request {
	var buffer bytes.Buffer
	if body != nil {
		json.NewEncoder(&buffer).Encode(body)
	}

	req := httptest.NewRequest(method, url, &buffer)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func ExecuteHandler(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
