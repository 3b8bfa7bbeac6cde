package proxy

const (
	headerHost            = "Host"
	headerConnection      = "Connection"
	headerProxyConnection = "Proxy-Connection"
	headerContentType     = "Content-Type"

	defaultHTTPPort  = "80"
	defaultHTTPSPort = "443"

	connectMethod = "CONNECT"
	headMethod    = "HEAD"

	connectionIDLength = 10
)

const forbiddenHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Access Denied</title>
    <style>
        body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
        h1 { color: #d9534f; }
    </style>
</head>
<body>
    <h1>403 Forbidden</h1>
    <p>Access to %s has been restricted by the administrator.</p>
</body>
</html>`
