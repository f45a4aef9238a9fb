package ledger

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
)

var store Store

// Init wires the package handlers. Called once during startup.
func Init(s Store) {
	store = s
}

type RecordPaymentRequest struct {
	Amount    int64  `json:"amount" form:"amount"`
	Purpose   string `json:"purpose" form:"purpose"`
	Reference string `json:"reference" form:"reference"`
}

type RecordDepositRequest struct {
	Amount    int64  `json:"amount" form:"amount"`
	Reference string `json:"reference" form:"reference"`
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

func GetBalance(c *fiber.Ctx) error {
	account, err := store.GetAccount(requestContext(c), c.Params("id"))
	if errors.Is(err, ErrAccountNotFound) {
		return router.ResponseNotFound(c, "Account not found")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Failed to load account")
	}
	return router.ResponseSuccessWithData(c, "Success get account balance", account)
}

// RecordDeposit appends a manual credit, outside the sale path.
func RecordDeposit(c *fiber.Ctx) error {
	ctx := requestContext(c)

	var req RecordDepositRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if req.Amount <= 0 {
		return router.ResponseBadRequest(c, "Amount must be positive")
	}

	deposit := Deposit{
		ID:        uuid.NewString(),
		AccountID: c.Params("id"),
		Amount:    req.Amount,
		Source:    SourceManual,
		Reference: req.Reference,
	}
	balance, err := store.ApplyDeposit(ctx, deposit)
	if errors.Is(err, ErrAccountNotFound) {
		return router.ResponseNotFound(c, "Account not found")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Failed to record deposit")
	}

	return router.ResponseCreatedWithData(c, "Deposit recorded", fiber.Map{
		"deposit": deposit,
		"balance": balance,
	})
}

func RecordPayment(c *fiber.Ctx) error {
	ctx := requestContext(c)

	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if req.Amount <= 0 {
		return router.ResponseBadRequest(c, "Amount must be positive")
	}

	payment := Payment{
		ID:        uuid.NewString(),
		AccountID: c.Params("id"),
		Amount:    req.Amount,
		Purpose:   req.Purpose,
		Reference: req.Reference,
	}
	balance, err := store.ApplyPayment(ctx, payment)
	if errors.Is(err, ErrAccountNotFound) {
		return router.ResponseNotFound(c, "Account not found")
	}
	if errors.Is(err, ErrNegativeBalance) {
		return router.ResponseConflict(c, "Payment would drive the balance negative")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Failed to record payment")
	}

	return router.ResponseCreatedWithData(c, "Payment recorded", fiber.Map{
		"payment": payment,
		"balance": balance,
	})
}
