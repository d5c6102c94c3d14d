package mail

import "fmt"

// ActivationBody renders the account activation email embedding the link.
func ActivationBody(activationLink string) string {
	return fmt.Sprintf(`
      <html>
        <head>
          <meta charset="utf-8">
          <style>
            .button {
              display: inline-block;
              text-decoration: none;
              border: none;
            }
          </style>
        </head>
        <body>
          <p>Click the following link to activate your account: <a class="button" href="%s">activate account</a></p>
        </body>
      </html>
    `, activationLink)
}

// ResetPasswordBody renders the password recovery email embedding the link.
func ResetPasswordBody(resetLink string) string {
	return fmt.Sprintf(`
      <html>
        <head>
          <meta charset="utf-8">
          <style>
            .button {
              display: inline-block;
              text-decoration: none;
              border: none;
            }
          </style>
        </head>
        <body>
          <p>Click the following link to reset your password: <a class="button" href="%s">Reset password</a></p>
        </body>
      </html>
    `, resetLink)
}

// ClosureBody renders the closure notice describing the purge policy.
func ClosureBody() string {
	return `
      <html>
        <head>
          <meta charset="utf-8">
        </head>
        <body>
          <p>Account closure has been initiated. To dismiss this action, simply sign in again within the 30 day period; after that time the account will be permanently removed from our records.</p>
        </body>
      </html>
    `
}

// Subjects used by the notification service.
const (
	SubjectActivation = "Account activation"
	SubjectReset      = "Password recovery"
	SubjectClosure    = "Account closure"
)
