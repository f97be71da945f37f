// Firma digital con la FIEL del contribuyente para el WS de descarga masiva.
// El SAT exige XMLDSig con C14N inclusiva y RSA-SHA1 sobre el nodo de la
// solicitud; el nodo ds:Signature se inyecta como hijo del elemento firmado.

package sat

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
)

const (
	namespaceDS  = "http://www.w3.org/2000/09/xmldsig#"
	algC14N      = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	algRSASHA1   = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	algSHA1      = "http://www.w3.org/2000/09/xmldsig#sha1"
	transformEnv = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// Fiel encapsula el certificado y la llave privada de la e.firma.
type Fiel struct {
	cert     tls.Certificate
	x509Cert *x509.Certificate
	priv     *rsa.PrivateKey
}

// LoadFiel carga la e.firma desde archivos PEM. Si cerPath está vacío retorna
// nil sin error (modo simulado: el descargador opera sin firma, solo en dev).
func LoadFiel(cerPath, keyPath string) (*Fiel, error) {
	if cerPath == "" {
		return nil, nil
	}
	if keyPath == "" {
		// Un solo archivo puede contener cert+key en PEM
		keyPath = cerPath
	}
	cert, err := tls.LoadX509KeyPair(cerPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("cargar e.firma: %w", err)
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parsear certificado e.firma: %w", err)
	}
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("la e.firma debe incluir llave privada RSA")
	}
	return &Fiel{cert: cert, x509Cert: x509Cert, priv: priv}, nil
}

// RFC devuelve el RFC del sujeto del certificado (atributo x500UniqueIdentifier
// o serialNumber, según la AC emisora). Vacío si no se puede extraer.
func (f *Fiel) RFC() string {
	if f == nil || f.x509Cert == nil {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(f.x509Cert.Subject.SerialNumber, " ", 2)[0])
}

// FirmarNodo firma el elemento raíz del fragmento XML dado y devuelve el
// fragmento con el nodo ds:Signature inyectado como último hijo.
func (f *Fiel) FirmarNodo(fragmento []byte) ([]byte, error) {
	if f == nil {
		return fragmento, nil
	}
	canonical, err := canonicalizeXML(fragmento)
	if err != nil {
		canonical = fragmento
	}
	docDigest := sha1.Sum(canonical)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	signedInfoXML := buildSignedInfo(docDigestB64)
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha1.Sum(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, f.priv, crypto.SHA1, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("firmar SignedInfo: %w", err)
	}
	signatureValueB64 := base64.StdEncoding.EncodeToString(signatureValue)
	certB64 := base64.StdEncoding.EncodeToString(f.x509Cert.Raw)

	signatureXML := buildSignatureXML(signedInfoXML, signatureValueB64, certB64, f.x509Cert)
	return injectSignature(fragmento, signatureXML)
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func buildSignedInfo(docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<SignedInfo xmlns="` + namespaceDS + `">`)
	sb.WriteString(`<CanonicalizationMethod Algorithm="` + algC14N + `"/>`)
	sb.WriteString(`<SignatureMethod Algorithm="` + algRSASHA1 + `"/>`)
	sb.WriteString(`<Reference URI="">`)
	sb.WriteString(`<Transforms><Transform Algorithm="` + transformEnv + `"/></Transforms>`)
	sb.WriteString(`<DigestMethod Algorithm="` + algSHA1 + `"/>`)
	sb.WriteString(`<DigestValue>` + docDigestB64 + `</DigestValue>`)
	sb.WriteString(`</Reference>`)
	sb.WriteString(`</SignedInfo>`)
	return sb.String()
}

func buildSignatureXML(signedInfoXML, signatureValueB64, certB64 string, cert *x509.Certificate) string {
	var sb strings.Builder
	sb.WriteString(`<Signature xmlns="` + namespaceDS + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<SignatureValue>` + signatureValueB64 + `</SignatureValue>`)
	sb.WriteString(`<KeyInfo><X509Data>`)
	sb.WriteString(`<X509IssuerSerial>`)
	sb.WriteString(`<X509IssuerName>` + escapeXML(cert.Issuer.String()) + `</X509IssuerName>`)
	sb.WriteString(`<X509SerialNumber>` + cert.SerialNumber.String() + `</X509SerialNumber>`)
	sb.WriteString(`</X509IssuerSerial>`)
	sb.WriteString(`<X509Certificate>` + certB64 + `</X509Certificate>`)
	sb.WriteString(`</X509Data></KeyInfo>`)
	sb.WriteString(`</Signature>`)
	return sb.String()
}

// injectSignature agrega el nodo ds:Signature como último hijo del elemento
// raíz del fragmento.
func injectSignature(fragmento []byte, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(fragmento); err != nil {
		return nil, fmt.Errorf("parsear fragmento a firmar: %w", err)
	}
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("parsear firma: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("fragmento sin elemento raíz")
	}
	root.AddChild(sigDoc.Root().Copy())
	return doc.WriteToBytes()
}

func escapeXML(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}
