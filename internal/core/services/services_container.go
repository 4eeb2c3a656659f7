package services

import (
	"github.com/SscSPs/tax_filing_app/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/platform/config"
)

// Gateways groups the external collaborators the services call out to.
type Gateways struct {
	Payment gateways.PaymentGateway
	Email   gateways.EmailSender
	// Google is optional; nil disables Google sign-in.
	Google portssvc.GoogleIdentityProvider
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gw Gateways) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The notifier is shared by every service that moves a filing forward.
	container.Notification = NewNotificationService(
		repos.ClientRepo,
		gw.Email,
		cfg.DashboardURL,
		cfg.InitialDeposit,
		cfg.PaymentCurrency,
	)

	container.Filing = NewFilingService(
		repos.ClientRepo,
		cfg.InitialDeposit,
		cfg.PaymentCurrency,
		WithFilingNotifier(container.Notification),
	)

	container.Payment = NewPaymentService(
		gw.Payment,
		repos.ClientRepo,
		repos.UserRepo,
		cfg.InitialDeposit,
		cfg.PaymentCurrency,
		WithPaymentNotifier(container.Notification),
	)

	container.Message = NewMessageService(repos.MessageRepo, repos.UserRepo)
	container.Case = NewCaseService(repos.ClientRepo, repos.UserRepo)
	container.User = NewUserService(repos.UserRepo)

	container.Auth = NewAuthService(
		container.User,
		repos.UserRepo,
		repos.ClientRepo,
		NewTokenService(cfg),
		WithGoogleIdentityProvider(gw.Google),
	)

	return container
}
