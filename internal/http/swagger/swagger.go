package swagger

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/product-pricing/api-contract"
)

const (
	// docsURL serves the Swagger UI.
	docsURL = "/docs"

	// specURL serves the embedded OpenAPI contract.
	specURL = "/docs/openapi.yml"

	swaggerUIVersion = "5.29.3"
)

// Register mounts the Swagger UI and the OpenAPI contract on r.
func Register(r chi.Router) {
	page := []byte(renderPage("Product Pricing API", specURL))

	r.Get(docsURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(page)
	})

	spec := apicontract.GetSpecBytes()
	r.Get(specURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(spec)
	})
}

func renderPage(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%[1]s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@%[3]s/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@%[3]s/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%[2]s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
    });
  };
</script>
</body>
</html>
`, title, specPath, swaggerUIVersion)
}
