package mailer

const verificationTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #0f766e; color: white; padding: 24px; text-align: center; border-radius: 8px 8px 0 0;">
        <h1 style="margin: 0; font-size: 22px;">Welcome to CareBridge</h1>
    </div>
    <div style="background: #ffffff; padding: 24px; border: 1px solid #e5e7eb; border-top: none;">
        <p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
        <p>Please confirm your email address to activate your account.</p>
        <p style="text-align: center; margin: 28px 0;">
            <a href="{{.VerifyURL}}" style="background: #0f766e; color: white; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Verify Email</a>
        </p>
        <p style="font-size: 13px; color: #6b7280;">If you did not sign up, you can safely ignore this email.</p>
    </div>
</body>
</html>
`

const passwordResetTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #0f766e; color: white; padding: 24px; text-align: center; border-radius: 8px 8px 0 0;">
        <h1 style="margin: 0; font-size: 22px;">Password Reset</h1>
    </div>
    <div style="background: #ffffff; padding: 24px; border: 1px solid #e5e7eb; border-top: none;">
        <p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
        <p>We received a request to reset your CareBridge password. This link is single-use.</p>
        <p style="text-align: center; margin: 28px 0;">
            <a href="{{.ResetURL}}" style="background: #0f766e; color: white; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Reset Password</a>
        </p>
        <p style="font-size: 13px; color: #6b7280;">If you did not request a reset, you can safely ignore this email.</p>
    </div>
</body>
</html>
`
