// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cert

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/certly/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/certly/internal/platform/request"
	"github.com/taibuivan/certly/internal/platform/respond"
	"github.com/taibuivan/certly/internal/platform/validate"
	"github.com/taibuivan/certly/internal/verification"
	"github.com/taibuivan/certly/pkg/textutil"
)

// Handler exposes the certificate endpoints.
type Handler struct {
	service      *Service
	maxBodyBytes int64
}

// NewHandler creates a [Handler]. maxBodyBytes caps every JSON body.
func NewHandler(service *Service, maxBodyBytes int64) *Handler {
	return &Handler{service: service, maxBodyBytes: maxBodyBytes}
}

// Endpoints lists the public routes, reported by page_not_found responses.
var Endpoints = []string{
	"POST /api/v1/send_code",
	"POST /api/v1/cert",
	"DELETE /api/v1/cert",
	"POST /api/v1/cert/forgot",
	"GET /api/v1/cert/{id}",
	"GET /api/v1/stats/users_count",
}

// RegisterRoutes mounts the handlers on an /api/v1 router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/send_code", handler.sendCode)

	router.Route("/cert", func(certRoute chi.Router) {
		certRoute.Post("/", handler.createCert)
		certRoute.Delete("/", handler.deleteCert)
		certRoute.Post("/forgot", handler.forgotCert)
		certRoute.Get("/{id}", handler.getCert)
	})

	router.Get("/stats/users_count", handler.usersCount)
}

// # Request Bodies

type sendCodeRequest struct {
	Email   string         `json:"email"   validate:"required,email,max=254"`
	Purpose purposeRequest `json:"purpose" validate:"required"`
}

type purposeRequest struct {
	Type string `json:"type" validate:"required,oneof=create delete"`
	ID   string `json:"id"   validate:"required_if=Type delete"`
}

type createCertRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name"  validate:"required,max=128"`
	Title string `json:"title" validate:"required,min=5,max=128"`
	Code  string `json:"code"  validate:"required,certcode"`
	Token string `json:"token" validate:"required,certtoken"`
}

type deleteCertRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Code  string `json:"code"  validate:"required,certcode"`
	Token string `json:"token" validate:"required,certtoken"`
}

type forgotCertRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// # Responses

type certIDResponse struct {
	ID string `json:"id"`
}

type emailResponse struct {
	Email string `json:"email"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// # Handlers

func (handler *Handler) sendCode(writer http.ResponseWriter, request *http.Request) {
	var input sendCodeRequest
	if err := requestutil.DecodeJSON(writer, request, &input, handler.maxBodyBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = textutil.SmartTrim(input.Email)
	input.Purpose.ID = textutil.SmartTrim(input.Purpose.ID)
	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	sent, err := handler.service.SendCode(request.Context(), SendCodeInput{
		Email:    input.Email,
		Purpose:  verification.Purpose(input.Purpose.Type),
		CertID:   input.Purpose.ID,
		ClientIP: ctxutil.GetClientIP(request.Context()),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sent)
}

func (handler *Handler) createCert(writer http.ResponseWriter, request *http.Request) {
	var input createCertRequest
	if err := requestutil.DecodeJSON(writer, request, &input, handler.maxBodyBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = textutil.SmartTrim(input.Email)
	input.Name = textutil.SmartTrim(input.Name)
	input.Title = textutil.SmartTrim(input.Title)
	input.Code = strings.ToUpper(textutil.SmartTrim(input.Code))
	input.Token = textutil.SmartTrim(input.Token)
	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), CreateInput{
		Email: input.Email,
		Name:  input.Name,
		Title: input.Title,
		Code:  input.Code,
		Token: input.Token,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, created.View())
}

func (handler *Handler) deleteCert(writer http.ResponseWriter, request *http.Request) {
	var input deleteCertRequest
	if err := requestutil.DecodeJSON(writer, request, &input, handler.maxBodyBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = textutil.SmartTrim(input.Email)
	input.Code = strings.ToUpper(textutil.SmartTrim(input.Code))
	input.Token = textutil.SmartTrim(input.Token)
	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	deleted, err := handler.service.Delete(request.Context(), ConfirmInput{
		Email: input.Email,
		Code:  input.Code,
		Token: input.Token,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, certIDResponse{ID: deleted.ShortID()})
}

func (handler *Handler) forgotCert(writer http.ResponseWriter, request *http.Request) {
	var input forgotCertRequest
	if err := requestutil.DecodeJSON(writer, request, &input, handler.maxBodyBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input.Email = textutil.SmartTrim(input.Email)
	if err := validate.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Forgot(request.Context(), input.Email, ctxutil.GetClientIP(request.Context())); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, emailResponse{Email: input.Email})
}

func (handler *Handler) getCert(writer http.ResponseWriter, request *http.Request) {
	found, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found.View())
}

func (handler *Handler) usersCount(writer http.ResponseWriter, request *http.Request) {
	count, err := handler.service.UsersCount(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, countResponse{Count: count})
}
