package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"xvo/app/tests"
	"xvo/internal/models"
	"xvo/internal/services"
)

func newMessageService(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) *services.MessageService {
	return services.NewMessageService(store, accounts, &tests.FakeCipher{}, typing, slog.Default())
}

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()

	ts := []struct {
		name        string
		senderID    int
		receiverID  int
		text        string
		callerID    int
		setupMocks  func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker)
		expectedErr error
		checkStore  func(t *testing.T, store *tests.MockMessageStore, typing *tests.MockTypingTracker)
	}{
		{
			name:       "Successful send returns plaintext and clears typing",
			senderID:   1,
			receiverID: 2,
			text:       "hello",
			callerID:   1,
			setupMocks: func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) {
				accounts.On("GetByID", ctx, 1).Return(&models.Account{ID: 1, Username: "alice"}, nil)
				store.On("Append", ctx, 1, 2, "enc:hello").Return(models.Message{
					ID: 7, SenderID: 1, ReceiverID: 2, Text: "enc:hello", Timestamp: 100,
				}, nil)
				typing.On("SetTyping", 1, 2, false).Return(nil)
			},
			expectedErr: nil,
		},
		{
			name:       "Caller must equal sender",
			senderID:   1,
			receiverID: 2,
			text:       "hello",
			callerID:   2,
			setupMocks: func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) {
			},
			expectedErr: services.ErrUnauthorized,
			checkStore: func(t *testing.T, store *tests.MockMessageStore, typing *tests.MockTypingTracker) {
				store.AssertNotCalled(t, "Append")
			},
		},
		{
			name:       "Anonymous caller rejected",
			senderID:   1,
			receiverID: 2,
			text:       "hello",
			callerID:   0,
			setupMocks: func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) {
			},
			expectedErr: services.ErrUnauthorized,
		},
		{
			name:       "Empty text rejected",
			senderID:   1,
			receiverID: 2,
			text:       "",
			callerID:   1,
			setupMocks: func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) {
			},
			expectedErr: services.ErrInvalidInput,
		},
		{
			name:       "Suspended sender blocked with no side effects",
			senderID:   1,
			receiverID: 2,
			text:       "hello",
			callerID:   1,
			setupMocks: func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) {
				accounts.On("GetByID", ctx, 1).Return(&models.Account{ID: 1, IsSuspended: true}, nil)
			},
			expectedErr: services.ErrSenderSuspended,
			checkStore: func(t *testing.T, store *tests.MockMessageStore, typing *tests.MockTypingTracker) {
				store.AssertNotCalled(t, "Append")
				typing.AssertNotCalled(t, "SetTyping")
			},
		},
		{
			name:       "Unknown sender account still sends",
			senderID:   9,
			receiverID: 2,
			text:       "hello",
			callerID:   9,
			setupMocks: func(store *tests.MockMessageStore, accounts *tests.MockAccountRepository, typing *tests.MockTypingTracker) {
				accounts.On("GetByID", ctx, 9).Return((*models.Account)(nil), nil)
				store.On("Append", ctx, 9, 2, "enc:hello").Return(models.Message{
					ID: 1, SenderID: 9, ReceiverID: 2, Text: "enc:hello", Timestamp: 100,
				}, nil)
				typing.On("SetTyping", 9, 2, false).Return(nil)
			},
			expectedErr: nil,
		},
	}

	for _, tt := range ts {
		t.Run(tt.name, func(t *testing.T) {
			store := &tests.MockMessageStore{}
			accounts := &tests.MockAccountRepository{}
			typing := &tests.MockTypingTracker{}
			tt.setupMocks(store, accounts, typing)

			service := newMessageService(store, accounts, typing)
			message, err := service.Send(ctx, tt.senderID, tt.receiverID, tt.text, tt.callerID)

			assert.Equal(t, tt.expectedErr, err)
			if tt.expectedErr == nil {
				assert.Equal(t, tt.text, message.Text, "ciphertext must never be returned to the caller")
				assert.Equal(t, tt.senderID, message.SenderID)
			}
			if tt.checkStore != nil {
				tt.checkStore(t, store, typing)
			}

			store.AssertExpectations(t)
			accounts.AssertExpectations(t)
			typing.AssertExpectations(t)
		})
	}
}

func TestMessageService_Conversations(t *testing.T) {
	ctx := context.Background()

	messages := []models.Message{
		{ID: 1, SenderID: 1, ReceiverID: 2, Text: "enc:old", Timestamp: 10},
		{ID: 2, SenderID: 2, ReceiverID: 1, Text: "enc:latest from 2", Timestamp: 20},
		{ID: 3, SenderID: 1, ReceiverID: 3, Text: "enc:to 3", Timestamp: 15},
	}

	t.Run("Caller gets own inbox, latest per peer, desc", func(t *testing.T) {
		store := &tests.MockMessageStore{}
		accounts := &tests.MockAccountRepository{}
		typing := &tests.MockTypingTracker{}
		store.On("All", ctx).Return(messages, nil)

		service := newMessageService(store, accounts, typing)
		entries, err := service.Conversations(ctx, 1, 1)

		assert.NoError(t, err)
		assert.Equal(t, []models.ConversationEntry{
			{OtherUserID: 2, LastMessage: "latest from 2", Timestamp: 20},
			{OtherUserID: 3, LastMessage: "to 3", Timestamp: 15},
		}, entries)
		store.AssertExpectations(t)
	})

	t.Run("Other callers rejected before storage access", func(t *testing.T) {
		store := &tests.MockMessageStore{}
		accounts := &tests.MockAccountRepository{}
		typing := &tests.MockTypingTracker{}

		service := newMessageService(store, accounts, typing)
		entries, err := service.Conversations(ctx, 1, 2)

		assert.Equal(t, services.ErrUnauthorized, err)
		assert.Nil(t, entries)
		store.AssertNotCalled(t, "All")
	})
}

func TestMessageService_Thread(t *testing.T) {
	ctx := context.Background()

	messages := []models.Message{
		{ID: 2, SenderID: 2, ReceiverID: 1, Text: "enc:second", Timestamp: 20},
		{ID: 1, SenderID: 1, ReceiverID: 2, Text: "enc:first", Timestamp: 10},
	}

	t.Run("Chronological and decrypted", func(t *testing.T) {
		store := &tests.MockMessageStore{}
		accounts := &tests.MockAccountRepository{}
		typing := &tests.MockTypingTracker{}
		store.On("All", ctx).Return(messages, nil)

		service := newMessageService(store, accounts, typing)
		thread, err := service.Thread(ctx, 1, 2, 1)

		assert.NoError(t, err)
		assert.Len(t, thread, 2)
		assert.Equal(t, "first", thread[0].Text)
		assert.Equal(t, "second", thread[1].Text)
	})

	t.Run("Participant who is not the queried user is rejected", func(t *testing.T) {
		store := &tests.MockMessageStore{}
		accounts := &tests.MockAccountRepository{}
		typing := &tests.MockTypingTracker{}

		service := newMessageService(store, accounts, typing)
		thread, err := service.Thread(ctx, 1, 2, 2)

		assert.Equal(t, services.ErrUnauthorized, err)
		assert.Nil(t, thread)
		store.AssertNotCalled(t, "All")
	})
}

func TestMessageService_Delete(t *testing.T) {
	ctx := context.Background()

	stored := []models.Message{
		{ID: 5, SenderID: 1, ReceiverID: 2, Text: "enc:between 1 and 2", Timestamp: 10},
	}

	ts := []struct {
		name        string
		id          int
		callerID    int
		setupMocks  func(store *tests.MockMessageStore)
		expectedErr error
	}{
		{
			name:     "Sender may delete",
			id:       5,
			callerID: 1,
			setupMocks: func(store *tests.MockMessageStore) {
				store.On("All", ctx).Return(stored, nil)
				store.On("RemoveByID", ctx, 5).Return(true, nil)
			},
			expectedErr: nil,
		},
		{
			name:     "Receiver may delete",
			id:       5,
			callerID: 2,
			setupMocks: func(store *tests.MockMessageStore) {
				store.On("All", ctx).Return(stored, nil)
				store.On("RemoveByID", ctx, 5).Return(true, nil)
			},
			expectedErr: nil,
		},
		{
			name:     "Third party rejected, message kept",
			id:       5,
			callerID: 3,
			setupMocks: func(store *tests.MockMessageStore) {
				store.On("All", ctx).Return(stored, nil)
			},
			expectedErr: services.ErrUnauthorized,
		},
		{
			name:     "Unknown id",
			id:       99,
			callerID: 1,
			setupMocks: func(store *tests.MockMessageStore) {
				store.On("All", ctx).Return(stored, nil)
			},
			expectedErr: services.ErrMessageNotFound,
		},
		{
			name:     "Anonymous caller rejected before storage access",
			id:       5,
			callerID: 0,
			setupMocks: func(store *tests.MockMessageStore) {
			},
			expectedErr: services.ErrUnauthorized,
		},
	}

	for _, tt := range ts {
		t.Run(tt.name, func(t *testing.T) {
			store := &tests.MockMessageStore{}
			accounts := &tests.MockAccountRepository{}
			typing := &tests.MockTypingTracker{}
			tt.setupMocks(store)

			service := newMessageService(store, accounts, typing)
			err := service.Delete(ctx, tt.id, tt.callerID)

			assert.Equal(t, tt.expectedErr, err)
			if tt.expectedErr != nil {
				store.AssertNotCalled(t, "RemoveByID")
			}
			store.AssertExpectations(t)
		})
	}
}

func TestMessageService_QueryTypingDirection(t *testing.T) {
	store := &tests.MockMessageStore{}
	accounts := &tests.MockAccountRepository{}
	typing := &tests.MockTypingTracker{}

	// user 2 asks whether user 1 is typing to them: the lookup direction
	// is other→querying user
	typing.On("IsTyping", 1, 2).Return(true, nil)

	service := newMessageService(store, accounts, typing)
	isTyping, err := service.QueryTyping(2, 1)

	assert.NoError(t, err)
	assert.True(t, isTyping)
	typing.AssertExpectations(t)
}
