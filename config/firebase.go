package config

// ServiceAccount holds essential fields from the Firebase JSON key.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// FirebaseServiceAccountKeyPath points at the service account used for FCM.
var FirebaseServiceAccountKeyPath = "firebase-service-account.json"
