package controller

import "errors"

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrUserRegister  = errors.New("failed to register user")
	ErrGenerateToken = errors.New("failed to generate token")
	ErrUserLogin     = errors.New("failed to login")

	ErrCreateSession      = errors.New("failed to create a chat session")
	ErrGetSessions        = errors.New("failed to get chat sessions")
	ErrDeleteSession      = errors.New("failed to delete a chat session")
	ErrGetSessionMessages = errors.New("failed to get session messages")
	ErrUpdateSessionTitle = errors.New("failed to update session title")
	ErrSessionNotFound    = errors.New("session not found")

	ErrCreateOrchestrator = errors.New("failed to create a conversation")
	ErrChatTurn           = errors.New("error while processing the message")

	ErrGetImageFile    = errors.New("failed to read uploaded image")
	ErrExtractPayslip  = errors.New("failed to analyze payslip image")
	ErrCreatePayslip   = errors.New("failed to save payslip")
	ErrGetPayslips     = errors.New("failed to get payslips")
	ErrPayslipNotFound = errors.New("payslip not found")

	ErrOSSNotConfigured    = errors.New("image storage is not configured")
	ErrGeneratePolicyToken = errors.New("failed to generate policy token")
	ErrGetImageLink        = errors.New("failed to get image link")
)
