package endpoints

import (
	"fmt"
	"strings"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"
	"broker-backoffice-go/internal/models"
	"broker-backoffice-go/internal/normalize"
)

// KycFilter narrows the KYC review list.
type KycFilter struct {
	Status string `json:"status,omitempty"`
	Page
}

// KycReview approves or rejects one document of a submission.
type KycReview struct {
	UserId       int64
	SubmissionId int64
	Document     models.DocumentKind
	Approve      bool
	Reason       string
}

var ListKyc = Query[KycFilter, []models.KycDocumentSet]{
	Name: "kyc.list",
	Request: func(f KycFilter) client.Request {
		q := values("status", f.Status)
		f.Page.apply(q)
		return client.Get("", "/admin/kyc", q)
	},
	Transform: normalize.KycSubmissions,
	Provides: func(list []models.KycDocumentSet, _ KycFilter) []cache.Tag {
		return listWithItems(TagKyc, list, func(s models.KycDocumentSet) int64 { return s.UserId })
	},
}

// UserKyc returns nil when the client has not submitted documents.
var UserKyc = Query[int64, *models.KycDocumentSet]{
	Name: "kyc.user",
	Request: func(userId int64) client.Request {
		return client.Get("", fmt.Sprintf("/admin/kyc/user/%d", userId), nil)
	},
	Transform: normalize.KycForUser,
	Provides:  providesItem[*models.KycDocumentSet](TagKyc),
}

var ReviewKycDocument = Mutation[KycReview, None]{
	Name: "kyc.review_document",
	Request: func(r KycReview) client.Request {
		body := map[string]any{"status": "APPROVED"}
		if !r.Approve {
			body["status"] = "REJECTED"
			body["rejectionReason"] = strings.TrimSpace(r.Reason)
		}
		path := fmt.Sprintf("/admin/kyc/%d/documents/%s", r.SubmissionId, strings.ToUpper(string(r.Document)))
		return client.Patch("", path, body)
	},
	Transform: discard,
	Invalidates: func(r KycReview) []cache.Tag {
		// the user record carries the top-level kycStatus
		return append(cache.ItemAndList(TagKyc, r.UserId), cache.ItemAndList(TagUsers, r.UserId)...)
	},
}
