package api

import (
	"context"
	"fmt"
	"net/http"
)

// LicenseStatus fetches the license state of the token owner.
func (c *Client) LicenseStatus(ctx context.Context) (*LicenseStatus, error) {
	var out LicenseStatus
	if err := c.do(ctx, call{op: "license status", method: http.MethodGet, path: "/license/status", authed: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestLicense asks the backend to issue and email a license code.
// Calling it again resends the code.
func (c *Client) RequestLicense(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.do(ctx, call{op: "license request", method: http.MethodPost, path: "/license/request", authed: true}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RedeemLicense validates a license code.
func (c *Client) RedeemLicense(ctx context.Context, code string) (string, error) {
	var out messageResponse
	err := c.do(ctx, call{
		op:     "license redeem",
		method: http.MethodPost,
		path:   "/license/redeem",
		authed: true,
		body:   map[string]string{"code": code},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// CertificateStatus lists per-subject certificate eligibility.
func (c *Client) CertificateStatus(ctx context.Context) ([]SubjectEligibility, error) {
	var out []SubjectEligibility
	if err := c.do(ctx, call{op: "certificate status", method: http.MethodGet, path: "/certificates/status", authed: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Certificate fetches the metadata of the certificate for a subject.
func (c *Client) Certificate(ctx context.Context, subjectID int64) (*CertificateMetadata, error) {
	var out CertificateMetadata
	err := c.do(ctx, call{
		op:     "certificate",
		method: http.MethodGet,
		path:   fmt.Sprintf("/certificates/%d", subjectID),
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadCertificate returns the rendered certificate document.
func (c *Client) DownloadCertificate(ctx context.Context, subjectID int64) ([]byte, error) {
	raw, _, err := c.execute(ctx, call{
		op:     "certificate download",
		method: http.MethodGet,
		path:   fmt.Sprintf("/certificates/%d/download", subjectID),
		authed: true,
	})
	return raw, err
}
