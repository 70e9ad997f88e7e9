package reconcile

// Project row attributes.
var (
	ProjectExternalID = F("project_external_id", "ID_Supabase_Projetos", "id_supabase_projetos", "ID_Projeto", "id_projeto", "project_id")
	ProjectID         = F("project_id", "id", "ID", "Id")
	ProjectTitle      = F("title", "Nome_do_Projeto", "Nome_Projeto", "Projeto", "Titulo", "Título", "title", "name")
	ProjectCategory   = F("category", "Tipo_de_Projeto", "Tipo_Projeto", "Categoria", "Tipo", "category", "type")
	ProjectReason     = F("justification", "Justificativa", "justification")
	ProjectObjective  = F("objective", "Objetivo", "Objetivos", "objective")
	ProjectBenefits   = F("benefits", "Beneficios", "Benefícios", "Ganhos", "benefits")
	ProjectLeader     = F("leader", "Lider", "Líder", "Lider_do_Projeto", "Líder_do_Projeto", "Responsavel", "Responsável", "leader")
	ProjectStartDate  = F("start_date", "Data_de_Inicio", "Data_de_Início", "Data_Inicio", "Inicio", "start_date", "startDate", "created_at")
	ProjectStatus     = F("status", "Status", "Situacao", "Situação", "status")
	ProjectProgress   = F("progress", "Progresso", "Percentual", "Progresso_Percentual", "progress")
	ProjectRecurrent  = F("recurrent_demands", "Demandas_Recorrentes", "Demandas_Recorrente", "recurrent_demands", "recurrentDemands")
)

// Demand row attributes.
var (
	DemandProjectRef  = F("project_ref", "ID_Projeto", "id_projeto", "ID_Supabase_Projetos", "Projeto", "Nome_do_Projeto", "project_id", "projectId")
	DemandID          = F("demand_id", "ID_Demanda", "id_demanda", "ID_Supabase_Demandas", "id")
	DemandGroup       = F("group", "Titulo_Demanda", "Título_Demanda", "Atividade", "Demanda", "activity", "activityName")
	DemandTaskName    = F("task", "Sub_Demanda", "Sub_Atividade", "Tarefa", "Descricao", "Descrição", "task", "name")
	DemandResponsible = F("responsible", "Responsavel", "Responsável", "Responsavel_Demanda", "responsible")
	DemandStatus      = F("status", "Status", "Status_Demanda", "status")
	DemandPhase       = F("dmaic", "Fase_DMAIC", "DMAIC", "Fase", "dmaic", "phase")
	DemandDeadline    = F("deadline", "Prazo", "Data_Limite", "Data_Prazo", "deadline", "due_date")
)

// Profile row attributes.
var (
	ProfileID       = F("id", "id", "ID", "user_id")
	ProfileUsername = F("username", "username", "usuario", "Usuario", "user")
	ProfilePassword = F("password", "password", "senha", "Senha")
	ProfileRole     = F("role", "role", "Role", "perfil", "funcao", "Função")
)

// DefaultActivityName groups demand rows that carry no group label.
const DefaultActivityName = "Atividades Gerais"
