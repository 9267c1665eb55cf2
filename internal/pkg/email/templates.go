package email

// Email templates in HTML format

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #faf6ef;
            color: #1f1b16;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #ffffff;
            border-radius: 12px;
            padding: 32px;
            border: 1px solid #e8e0d2;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            color: #7a4f2a;
            margin: 0;
        }
        h2 {
            color: #1f1b16;
            font-size: 24px;
            margin: 0 0 16px;
        }
        p {
            color: #6b6255;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .btn {
            display: inline-block;
            background: #7a4f2a;
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 8px;
            font-weight: 600;
            font-size: 16px;
            margin: 16px 0;
        }
        .code {
            display: block;
            text-align: center;
            background: #f4ede0;
            border-radius: 8px;
            padding: 16px;
            margin: 16px 0;
            font-size: 32px;
            letter-spacing: 8px;
            font-weight: 700;
            color: #1f1b16;
        }
        .footer {
            text-align: center;
            margin-top: 32px;
            color: #a89f8e;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo">
                <h1>Inkleaf</h1>
            </div>
            {{.Content}}
        </div>
        <div class="footer">
            <p>You are receiving this email because of activity on your Inkleaf account.</p>
        </div>
    </div>
</body>
</html>
`

// MagicLinkTemplate carries the one-time sign-in code
const MagicLinkTemplate = `
<h2>Sign in to Inkleaf</h2>
<p>Enter this one-time code in the app to sign in:</p>
<span class="code">{{.Code}}</span>
<p>Or open this link on the device you requested the code from:</p>
<p style="text-align:center"><a class="btn" href="{{.MagicURL}}">Sign in</a></p>
<p>The code expires in 15 minutes. If you didn't request it, you can safely ignore this email.</p>
`

// AccountDeletionTemplate carries the account-deletion confirmation code
const AccountDeletionTemplate = `
<h2>Confirm account deletion</h2>
<p>We received a request to permanently delete your Inkleaf account. Enter this code to confirm:</p>
<span class="code">{{.Code}}</span>
<p>Deletion removes your reading progress, unlocked chapters and remaining credits. This cannot be undone.</p>
<p>If you didn't request this, ignore this email and your account will stay untouched.</p>
`

// WelcomeTemplate greets a newly registered reader
const WelcomeTemplate = `
<h2>Welcome to Inkleaf</h2>
<p>Your account is ready and your signup credits are waiting. Find your next story:</p>
<p style="text-align:center"><a class="btn" href="{{.LibraryURL}}">Browse the library</a></p>
`
