package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"karhubty-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type documentFixture struct {
	docs    *MockDocumentRepo
	agents  *MockAgentRepo
	storage *MockStorage
	pub     *recordingPublisher
	svc     *documentService
}

func newDocumentFixture() *documentFixture {
	f := &documentFixture{
		docs:    new(MockDocumentRepo),
		agents:  new(MockAgentRepo),
		storage: new(MockStorage),
		pub:     &recordingPublisher{},
	}
	f.svc = NewDocumentService(f.docs, f.agents, f.storage, f.pub).(*documentService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func pdfUpload() domain.Upload {
	data := []byte("%PDF-1.4 license")
	return domain.Upload{FileName: "license.pdf", ContentType: "application/pdf", Size: int64(len(data)), Data: data}
}

func TestDocumentService_UploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("First Upload Moves Agent To Verification", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AgencyName: "Sahara Cars", AccountStatus: domain.AgentStatusPending}, nil)
		f.storage.On("SaveFile", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "documents/3/") && strings.HasSuffix(key, "-license.pdf")
		}), mock.Anything, int64(16), "application/pdf").Return(nil)
		f.agents.On("UpdateStatus", ctx, int64(3), domain.AgentStatusInVerification, (*time.Time)(nil)).Return(nil)
		f.docs.On("Create", ctx, mock.AnythingOfType("*domain.AgentDocument")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.AgentDocument).ID = 11 }).
			Return(nil)

		doc, err := f.svc.UploadDocument(ctx, 3, "license", pdfUpload())
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusPending, doc.Status)
		assert.Equal(t, "license.pdf", doc.FileName)
		assert.Equal(t, fixedNow, doc.UploadedAt)
		f.agents.AssertExpectations(t)

		evt := f.pub.last()
		assert.Equal(t, domain.EventDocumentUploaded, evt.Type)
		assert.Equal(t, domain.RecipientSuperAdminBroadcast, evt.Recipient.Type)
		assert.Equal(t, int64(11), evt.RelatedEntityID)
	})

	t.Run("Second Upload Keeps Status", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusInVerification}, nil)
		f.storage.On("SaveFile", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.docs.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.svc.UploadDocument(ctx, 3, "insurance", pdfUpload())
		require.NoError(t, err)
		f.agents.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Approved Agent Cannot Upload", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusApproved}, nil)

		_, err := f.svc.UploadDocument(ctx, 3, "license", pdfUpload())
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("Unknown Agent", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(nil, domain.ErrAgentNotFound)

		_, err := f.svc.UploadDocument(ctx, 3, "license", pdfUpload())
		assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	})

	t.Run("Rejects Bad Files", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusPending}, nil)

		gif := pdfUpload()
		gif.ContentType = "image/gif"
		_, err := f.svc.UploadDocument(ctx, 3, "license", gif)
		assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

		big := pdfUpload()
		big.Size = domain.MaxDocumentSize + 1
		_, err = f.svc.UploadDocument(ctx, 3, "license", big)
		assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

		_, err = f.svc.UploadDocument(ctx, 3, " ", pdfUpload())
		assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

		f.storage.AssertNotCalled(t, "SaveFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Removes File When Insert Fails", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusInVerification}, nil)
		f.storage.On("SaveFile", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.storage.On("DeleteFile", ctx, mock.Anything).Return(nil)
		f.docs.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

		_, err := f.svc.UploadDocument(ctx, 3, "license", pdfUpload())
		assert.Error(t, err)
		f.storage.AssertCalled(t, "DeleteFile", ctx, mock.Anything)
		assert.Empty(t, f.pub.types())
	})
}

func TestDocumentService_VerifyDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Last Verified Document Approves Agent", func(t *testing.T) {
		f := newDocumentFixture()
		agent := &domain.Agent{ID: 3, Email: "agency@karhubty.com", AgencyName: "Sahara Cars", AccountStatus: domain.AgentStatusInVerification}
		f.docs.On("GetByID", ctx, int64(11)).Return(&domain.AgentDocument{ID: 11, AgentID: 3, DocumentType: "license", Status: domain.DocumentStatusPending}, nil)
		f.docs.On("Update", ctx, mock.Anything).Return(nil)
		f.agents.On("GetByID", ctx, int64(3)).Return(agent, nil)
		f.docs.On("ListByAgent", ctx, int64(3)).Return([]domain.AgentDocument{
			{ID: 10, AgentID: 3, Status: domain.DocumentStatusVerified},
			{ID: 11, AgentID: 3, Status: domain.DocumentStatusVerified},
		}, nil)
		f.agents.On("UpdateStatus", ctx, int64(3), domain.AgentStatusApproved, mock.MatchedBy(func(at *time.Time) bool {
			return at != nil && at.Equal(fixedNow)
		})).Return(nil)

		doc, err := f.svc.VerifyDocument(ctx, 11, 1, true, "")
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusVerified, doc.Status)
		require.NotNil(t, doc.VerifiedBy)
		assert.Equal(t, int64(1), *doc.VerifiedBy)
		require.NotNil(t, doc.VerifiedAt)
		assert.True(t, doc.VerifiedAt.Equal(fixedNow))
		f.agents.AssertExpectations(t)
		assert.Equal(t, []domain.EventType{domain.EventDocumentVerified, domain.EventAgentApproved}, f.pub.types())
	})

	t.Run("Rejection Keeps Agent In Verification", func(t *testing.T) {
		f := newDocumentFixture()
		agent := &domain.Agent{ID: 3, Email: "agency@karhubty.com", AccountStatus: domain.AgentStatusInVerification}
		f.docs.On("GetByID", ctx, int64(11)).Return(&domain.AgentDocument{ID: 11, AgentID: 3, DocumentType: "license", Status: domain.DocumentStatusPending}, nil)
		f.docs.On("Update", ctx, mock.Anything).Return(nil)
		f.agents.On("GetByID", ctx, int64(3)).Return(agent, nil)
		f.docs.On("ListByAgent", ctx, int64(3)).Return([]domain.AgentDocument{
			{ID: 11, AgentID: 3, Status: domain.DocumentStatusRejected},
		}, nil)

		doc, err := f.svc.VerifyDocument(ctx, 11, 1, false, "blurry scan")
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusRejected, doc.Status)
		assert.Equal(t, "blurry scan", doc.RejectionReason)
		assert.Nil(t, doc.VerifiedAt, "rejection does not stamp verification")
		assert.Nil(t, doc.VerifiedBy)
		f.agents.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		evt := f.pub.last()
		assert.Equal(t, domain.EventDocumentRejected, evt.Type)
		assert.Contains(t, evt.Message, "blurry scan")
		require.NotNil(t, evt.Email)
		assert.Equal(t, "agency@karhubty.com", evt.Email.To)
	})

	t.Run("Unknown Document", func(t *testing.T) {
		f := newDocumentFixture()
		f.docs.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrDocumentNotFound)

		_, err := f.svc.VerifyDocument(ctx, 99, 1, true, "")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}

func TestDocumentService_ApproveAgentAfterDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("No Documents", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusInVerification}, nil)
		f.docs.On("ListByAgent", ctx, int64(3)).Return([]domain.AgentDocument{}, nil)

		promoted, err := f.svc.ApproveAgentAfterDocuments(ctx, 3)
		require.NoError(t, err)
		assert.False(t, promoted)
	})

	t.Run("One Pending Document", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusInVerification}, nil)
		f.docs.On("ListByAgent", ctx, int64(3)).Return([]domain.AgentDocument{
			{Status: domain.DocumentStatusVerified},
			{Status: domain.DocumentStatusPending},
		}, nil)

		promoted, err := f.svc.ApproveAgentAfterDocuments(ctx, 3)
		require.NoError(t, err)
		assert.False(t, promoted)
	})

	t.Run("Approved Agent Is Not Revisited", func(t *testing.T) {
		f := newDocumentFixture()
		f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AccountStatus: domain.AgentStatusApproved}, nil)

		promoted, err := f.svc.ApproveAgentAfterDocuments(ctx, 3)
		require.NoError(t, err)
		assert.False(t, promoted)
		f.docs.AssertNotCalled(t, "ListByAgent", mock.Anything, mock.Anything)
	})
}

func TestDocumentService_SubmitForReview(t *testing.T) {
	ctx := context.Background()

	f := newDocumentFixture()
	f.agents.On("GetByID", ctx, int64(3)).Return(&domain.Agent{ID: 3, AgencyName: "Sahara Cars"}, nil)
	f.docs.On("ListByAgent", ctx, int64(3)).Return([]domain.AgentDocument{}, nil).Once()

	err := f.svc.SubmitForReview(ctx, 3)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	f.docs.On("ListByAgent", ctx, int64(3)).Return([]domain.AgentDocument{{ID: 1}}, nil)
	require.NoError(t, f.svc.SubmitForReview(ctx, 3))

	evt := f.pub.last()
	assert.Equal(t, domain.EventDocumentsSubmitted, evt.Type)
	assert.Equal(t, domain.RecipientSuperAdminBroadcast, evt.Recipient.Type)
}

func TestDocumentService_DeleteDocument(t *testing.T) {
	ctx := context.Background()

	f := newDocumentFixture()
	f.docs.On("GetByID", ctx, int64(11)).Return(&domain.AgentDocument{ID: 11, AgentID: 3, FilePath: "documents/3/x-license.pdf"}, nil)
	f.docs.On("Delete", ctx, int64(11)).Return(nil)
	f.storage.On("DeleteFile", ctx, "documents/3/x-license.pdf").Return(errors.New("gone"))

	err := f.svc.DeleteDocument(ctx, 11, 4)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	assert.NoError(t, f.svc.DeleteDocument(ctx, 11, 3))
	f.docs.AssertCalled(t, "Delete", ctx, int64(11))
}
