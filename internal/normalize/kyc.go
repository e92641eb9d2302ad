package normalize

import (
	"strings"
	"time"

	"broker-backoffice-go/internal/coerce"
	"broker-backoffice-go/internal/models"

	"go.uber.org/zap"
)

// KycDocument maps one artifact. Each artifact keeps its own status; no
// overall status is derived here.
func KycDocument(kind models.DocumentKind, dto models.KycDocumentDTO) models.KycDocument {
	return models.KycDocument{
		Kind:            kind,
		Url:             strings.TrimSpace(dto.Url),
		Status:          DocumentStatus(dto.Status),
		RejectionReason: coerce.StringPtr(dto.RejectionReason),
		ApprovedBy:      coerce.StringPtr(dto.ApprovedBy),
		ApprovedAt:      coerce.TimePtr(dto.ApprovedAt),
	}
}

// KycSubmission flattens the document array of a submission into the four
// fixed slots. When the backend sends the same slot twice the first one wins.
func KycSubmission(dto models.KycSubmissionDTO, now time.Time) models.KycDocumentSet {
	submissionId := coerce.Int(dto.Id)
	userId := refUserId(dto.UserId, dto.User)
	name, email := clientIdentity("", "", dto.User, userId, submissionId)

	set := models.KycDocumentSet{
		UserId:       userId,
		SubmissionId: submissionId,
		ClientName:   name,
		Email:        email,
		SubmittedAt:  coerce.TimeOr(dto.SubmittedAt, coerce.TimeOr(dto.CreatedAt, now)),
	}

	for _, doc := range dto.Documents {
		kind, ok := DocumentKind(doc.Type)
		if !ok {
			zap.L().Debug("Ignoring unreviewed KYC document type",
				zap.Int64("user_id", userId),
				zap.String("type", doc.Type))
			continue
		}
		mapped := KycDocument(kind, doc)
		switch kind {
		case models.DocPassportFront:
			if set.PassportFront == nil {
				set.PassportFront = &mapped
			}
		case models.DocPassportBack:
			if set.PassportBack == nil {
				set.PassportBack = &mapped
			}
		case models.DocSelfie:
			if set.Selfie == nil {
				set.Selfie = &mapped
			}
		case models.DocUtilityBill:
			if set.UtilityBill == nil {
				set.UtilityBill = &mapped
			}
		}
	}

	return set
}

// KycSubmissions decodes the KYC review list.
func KycSubmissions(body []byte, now time.Time) []models.KycDocumentSet {
	dtos := decodeItems[models.KycSubmissionDTO]("kyc", DecodeList(body, "kyc", "submissions"))
	out := make([]models.KycDocumentSet, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, KycSubmission(dto, now))
	}
	return out
}

// KycForUser decodes a per-user KYC response, which the backend sends either
// as a single submission or as a list. Returns nil when the user has none.
func KycForUser(body []byte, now time.Time) *models.KycDocumentSet {
	if items := DecodeList(body, "kyc", "submissions"); len(items) > 0 {
		dtos := decodeItems[models.KycSubmissionDTO]("kyc", items[:1])
		if len(dtos) == 0 {
			return nil
		}
		set := KycSubmission(dtos[0], now)
		return &set
	}

	dto, ok := decodeSingle[models.KycSubmissionDTO]("kyc", body, "kyc", "submission")
	if !ok || (dto.Id == nil && len(dto.Documents) == 0) {
		return nil
	}
	set := KycSubmission(dto, now)
	return &set
}
