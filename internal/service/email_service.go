package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"nestling/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. If fromEmail is empty the
// service is disabled and every send becomes a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcome sends a welcome email to a new account. Failures are logged
// and never block the caller.
func (s *EmailService) SendWelcome(ctx context.Context, user *models.User) {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", user.Email)
		return
	}

	subject := "Welcome to Nestling!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e8b57; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2e8b57; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Nestling!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Thank you for creating your Nestling account! We're here to help you keep track of your little one's health, growth and vaccinations.</p>
			<p>Here's what you can do next:</p>
			<ul>
				<li>Add your child's profile</li>
				<li>Log growth measurements and medications</li>
				<li>Review the recommended vaccine schedule</li>
				<li>Invite caregivers and your pediatrician to the care team</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Get Started</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Nestling. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, user.DisplayName(), s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Thank you for creating your Nestling account! We're here to help you keep track of your little one's health, growth and vaccinations.

Here's what you can do next:
- Add your child's profile
- Log growth measurements and medications
- Review the recommended vaccine schedule
- Invite caregivers and your pediatrician to the care team

Get started: %s/login

---
This is an automated email from Nestling. Please do not reply.
`, user.DisplayName(), s.appBaseURL)

	if err := s.sendEmail(ctx, user.Email, subject, htmlBody, textBody); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
	}
}

// SendInvite notifies a user that they were added to a child's care team.
// Failures are logged and never block the caller.
func (s *EmailService) SendInvite(ctx context.Context, invitee, inviter *models.User, role models.Role) {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invite to %s", invitee.Email)
		return
	}

	subject := fmt.Sprintf("%s added you to their care team on Nestling", inviter.DisplayName())
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e8b57; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2e8b57; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>You've Been Added to a Care Team</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>%s has added you to their child's care team on Nestling as a %s.</p>
			<p>Sign in to see the child's profile, growth records and vaccine schedule.</p>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Open Nestling</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Nestling. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, invitee.DisplayName(), inviter.DisplayName(), role, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

%s has added you to their child's care team on Nestling as a %s.

Sign in to see the child's profile, growth records and vaccine schedule: %s/login

---
This is an automated email from Nestling. Please do not reply.
`, invitee.DisplayName(), inviter.DisplayName(), role, s.appBaseURL)

	if err := s.sendEmail(ctx, invitee.Email, subject, htmlBody, textBody); err != nil {
		log.Printf("Failed to send invite email to %s: %v", invitee.Email, err)
	}
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
