package quix

// InputType classifies how a variable's value is supplied at deployment time
type InputType string

const (
	InputTypeFreeText    InputType = "FreeText"
	InputTypeSecret      InputType = "Secret"
	InputTypeInputTopic  InputType = "InputTopic"
	InputTypeOutputTopic InputType = "OutputTopic"
)

// Variable is one configuration input of a deployment or application.
// Secret variables carry a secretKey reference and never a literal value;
// all other types carry value (deployment view) or defaultValue (app view).
type Variable struct {
	Name         string    `yaml:"name" json:"name"`
	InputType    InputType `yaml:"inputType" json:"inputType"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	Required     bool      `yaml:"required" json:"required"`
	Value        string    `yaml:"value,omitempty" json:"value,omitempty"`
	DefaultValue string    `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	SecretKey    string    `yaml:"secretKey,omitempty" json:"secretKey,omitempty"`
}

// AppView converts a deployment-view variable into its app.yaml form,
// which declares defaults rather than bound values.
func (v Variable) AppView() Variable {
	v.DefaultValue = v.Value
	v.Value = ""
	return v
}

// Resources are the runtime limits of a deployment
type Resources struct {
	CPU      int `yaml:"cpu" json:"cpu"`           // millicores
	Memory   int `yaml:"memory" json:"memory"`     // MB
	Replicas int `yaml:"replicas" json:"replicas"`
}

// PublicAccess configures internet exposure for a deployment
type PublicAccess struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	URLPrefix string `yaml:"urlPrefix,omitempty" json:"urlPrefix,omitempty"`
}

// Deployment is one entry in the quix.yaml deployments list
type Deployment struct {
	Name           string        `yaml:"name" json:"name"`
	Application    string        `yaml:"application" json:"application"`
	Version        string        `yaml:"version,omitempty" json:"version,omitempty"`
	DeploymentType string        `yaml:"deploymentType,omitempty" json:"deploymentType,omitempty"`
	Resources      Resources     `yaml:"resources" json:"resources"`
	PublicAccess   *PublicAccess `yaml:"publicAccess,omitempty" json:"publicAccess,omitempty"`
	Variables      []Variable    `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// AppDescriptor is the app.yaml written into each application folder.
// Name must equal the application key of the paired deployment.
type AppDescriptor struct {
	Name          string     `yaml:"name" json:"name"`
	Language      string     `yaml:"language" json:"language"`
	Variables     []Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	Dockerfile    string     `yaml:"dockerfile" json:"dockerfile"`
	RunEntryPoint string     `yaml:"runEntryPoint" json:"runEntryPoint"`
	DefaultFile   string     `yaml:"defaultFile,omitempty" json:"defaultFile,omitempty"`
}

// Topic is one entry in the quix.yaml topics list
type Topic struct {
	Name string `yaml:"name" json:"name"`
}

// Metadata is the quix.yaml header
type Metadata struct {
	Version string `yaml:"version" json:"version"`
}

// Project is the root quix.yaml document: every deployment in the
// converted project plus the topics they reference.
type Project struct {
	Metadata    Metadata     `yaml:"metadata" json:"metadata"`
	Deployments []Deployment `yaml:"deployments" json:"deployments"`
	Topics      []Topic      `yaml:"topics" json:"topics"`
}

const (
	// MetadataVersion is the quix.yaml schema version this tool emits
	MetadataVersion = "1.0"

	// DeploymentTypeService marks a continuously running deployment
	DeploymentTypeService = "Service"

	// DockerfileName is the only dockerfile path an app descriptor may
	// reference: the literal lowercase filename
	DockerfileName = "dockerfile"

	// PublicPort is the single container port Quix Cloud routes to
	PublicPort = 80
)

// Constructors

func NewProject() *Project {
	return &Project{
		Metadata:    Metadata{Version: MetadataVersion},
		Deployments: make([]Deployment, 0),
		Topics:      make([]Topic, 0),
	}
}

func (p *Project) AddDeployment(d Deployment) {
	p.Deployments = append(p.Deployments, d)
}

func NewDeployment(name, application string, res Resources) Deployment {
	return Deployment{
		Name:           name,
		Application:    application,
		Version:        "latest",
		DeploymentType: DeploymentTypeService,
		Resources:      res,
		Variables:      make([]Variable, 0),
	}
}

func NewAppDescriptor(name, language, entryPoint string) AppDescriptor {
	return AppDescriptor{
		Name:          name,
		Language:      language,
		Variables:     make([]Variable, 0),
		Dockerfile:    DockerfileName,
		RunEntryPoint: entryPoint,
		DefaultFile:   entryPoint,
	}
}

// IsTopic reports whether the variable names a Kafka topic binding
func (v Variable) IsTopic() bool {
	return v.InputType == InputTypeInputTopic || v.InputType == InputTypeOutputTopic
}
