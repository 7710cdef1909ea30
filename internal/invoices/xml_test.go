package invoices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

const sampleNFe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc versao="4.00">
  <NFe>
    <infNFe Id="NFe35200814200166000187550010000000046550000046" versao="4.00">
      <ide>
        <nNF>4655</nNF>
        <dhEmi>2026-08-12T09:30:00-03:00</dhEmi>
      </ide>
      <emit>
        <xNome>Distribuidora Horizonte LTDA</xNome>
      </emit>
      <total>
        <ICMSTot>
          <vNF>1523.88</vNF>
        </ICMSTot>
      </total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParseNFe(t *testing.T) {
	req, err := ParseNFe([]byte(sampleNFe))
	require.NoError(t, err)

	require.Equal(t, "4655", req.Number)
	require.Equal(t, "Distribuidora Horizonte LTDA", req.Supplier)
	require.Equal(t, 1523.88, req.Total)
	require.NotNil(t, req.AccessKey)
	require.Equal(t, "35200814200166000187550010000000046550000046", *req.AccessKey)
	require.Len(t, *req.AccessKey, 44)

	want, _ := time.Parse(time.RFC3339, "2026-08-12T09:30:00-03:00")
	require.True(t, req.IssueDate.Equal(want))
}

func TestParseNFeRejectsMalformed(t *testing.T) {
	_, err := ParseNFe([]byte("<nfeProc><broken"))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestParseNFeRejectsShortAccessKey(t *testing.T) {
	payload := `<nfeProc><NFe><infNFe Id="NFe123"><ide><nNF>1</nNF><dhEmi>2026-08-12T09:30:00Z</dhEmi></ide><emit><xNome>X</xNome></emit></infNFe></NFe></nfeProc>`
	_, err := ParseNFe([]byte(payload))
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "44 digits")
}

func TestParseNFeRejectsMissingSupplier(t *testing.T) {
	payload := `<nfeProc><NFe><infNFe Id="NFe35200814200166000187550010000000046550000046"><ide><nNF>1</nNF><dhEmi>2026-08-12T09:30:00Z</dhEmi></ide></infNFe></NFe></nfeProc>`
	_, err := ParseNFe([]byte(payload))
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "supplier")
}
