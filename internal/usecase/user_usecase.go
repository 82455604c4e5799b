package usecase

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/repository"
	"github.com/fadhilmaulana/glowcoach/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var SkinTypes = map[string]bool{
	"normal":      true,
	"dry":         true,
	"oily":        true,
	"combination": true,
	"sensitive":   true,
}

const codeSessionTTL = 15 * time.Minute

type UserUsecase struct {
	UserRepository *repository.UserRepository
	DB             *pgxpool.Pool
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewUserUsecase(userRepository *repository.UserRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *UserUsecase {
	return &UserUsecase{
		UserRepository: userRepository,
		DB:             db,
		Log:            zap,
		Config:         koanf,
	}
}

func validateEmail(email string) error {
	if email == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is required to not be empty",
			Param:   "email",
		}
	} else if !strings.Contains(email, "@") {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is not a valid address",
			Param:   "email",
		}
	} else if len(email) > 80 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email must be at most 80 characters",
			Param:   "email",
		}
	}

	return nil
}

// sendVerificationCode renders the email template and delivers the code.
func (usecase *UserUsecase) sendVerificationCode(email string, code string, subject string) error {
	templateData := model.VerificationCodeTemplateData{
		Code:      code,
		ExpiresIn: 5,
	}

	tmpl, err := template.ParseFS(util.TemplateFS, "template/verification_code.html")
	if err != nil {
		return err
	}

	var body bytes.Buffer
	err = tmpl.Execute(&body, templateData)
	if err != nil {
		return err
	}

	smtpHost := usecase.Config.String("SMTP_HOST")
	smtpPort := usecase.Config.Int("SMTP_PORT")
	senderName := usecase.Config.String("SENDER_NAME")
	senderEmail := usecase.Config.String("SENDER_EMAIL")
	senderPassword := usecase.Config.String("SENDER_PASSWORD")

	return util.SendEmail(smtpHost, smtpPort, senderName, senderEmail, senderPassword, email, subject, body.String())
}

func (usecase *UserUsecase) StartSignup(ctx *fiber.Ctx, payload model.SignupStartRequest) (model.AuthStartResponse, error) {
	ctxContext := ctx.Context()

	response := model.AuthStartResponse{}

	if err := validateEmail(payload.Email); err != nil {
		return response, err
	}

	if payload.Fullname == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Fullname is required to not be empty",
			Param:   "fullname",
		}
	} else if len(payload.Fullname) > 40 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Fullname must be at most 40 characters",
			Param:   "fullname",
		}
	}

	payload.Email = strings.ToLower(payload.Email)

	exists, err := usecase.UserRepository.CheckEmailUnique(ctxContext, payload.Email)
	if err != nil {
		return response, err
	}

	if exists == 1 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is already registered",
			Param:   "email",
		}
	}

	sessionExists, oldSessionId, err := usecase.UserRepository.CheckAuthEmailSession(ctxContext, model.AuthPurposeSignup, payload.Email)
	if err != nil {
		return response, err
	}

	if sessionExists {
		usecase.Log.Debug("signup session exists, invalidating previous code", zap.String("email", payload.Email))
		err = usecase.UserRepository.DeleteAuthSession(ctxContext, model.AuthPurposeSignup, oldSessionId)
		if err != nil {
			return response, err
		}
		err = usecase.UserRepository.DeleteAuthEmailSession(ctxContext, model.AuthPurposeSignup, payload.Email)
		if err != nil {
			return response, err
		}
	}

	code, err := util.GenerateVerificationCode()
	if err != nil {
		return response, err
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return response, err
	}

	sessionId := uuid.New()
	codeExpiresAt := time.Now().UTC().Add(5 * time.Minute).Unix()

	response.SessionId = sessionId
	response.CodeExpiresAt = codeExpiresAt

	err = usecase.sendVerificationCode(payload.Email, code, "Your glowcoach signup code")
	if err != nil {
		return response, err
	}

	err = usecase.UserRepository.SetAuthSession(ctxContext, model.AuthPurposeSignup, sessionId, map[string]interface{}{
		"email":           payload.Email,
		"fullname":        payload.Fullname,
		"code_hash":       string(codeHash),
		"code_expires_at": codeExpiresAt,
	}, codeSessionTTL)
	if err != nil {
		return response, err
	}

	err = usecase.UserRepository.SetAuthEmailSession(ctxContext, model.AuthPurposeSignup, payload.Email, sessionId.String(), codeSessionTTL)
	if err != nil {
		return response, err
	}

	return response, nil
}

func validateCodePayload(payload model.AuthVerifyRequest) (uuid.UUID, error) {
	sessionId, err := uuid.Parse(payload.SessionId)
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid session id",
			Param:   "sessionId",
		}
	}

	if payload.Code == "" {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Code is required to not be empty",
			Param:   "code",
		}
	} else if len(payload.Code) != 6 {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Code must be 6 digits",
			Param:   "code",
		}
	}

	return sessionId, nil
}

// checkCode validates a stored session hash against the submitted code.
func checkCode(data map[string]string, code string) error {
	if len(data) == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Verification session is expired or not exists",
			Param:   "sessionId",
		}
	}

	codeHash := data["code_hash"]
	expiresAtStr := data["code_expires_at"]
	if codeHash == "" || expiresAtStr == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Verification code does not exist or expired",
			Param:   "code",
		}
	}

	expiresAt, err := strconv.ParseInt(expiresAtStr, 10, 64)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(codeHash), []byte(code))
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Verification code does not match",
			Param:   "code",
		}
	}

	if time.Now().Unix() > expiresAt {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Verification code is expired",
			Param:   "code",
		}
	}

	return nil
}

func (usecase *UserUsecase) VerifySignup(ctx *fiber.Ctx, payload model.AuthVerifyRequest) (model.TokenResponse, error) {
	ctxContext := ctx.Context()
	token := model.TokenResponse{}

	sessionId, err := validateCodePayload(payload)
	if err != nil {
		return token, err
	}

	data, err := usecase.UserRepository.GetAuthSession(ctxContext, model.AuthPurposeSignup, sessionId)
	if err != nil {
		return token, err
	}

	err = checkCode(data, payload.Code)
	if err != nil {
		return token, err
	}

	// a concurrent signup for the same email may have won the race
	exists, err := usecase.UserRepository.CheckEmailUnique(ctxContext, data["email"])
	if err != nil {
		return token, err
	}

	if exists == 1 {
		_ = usecase.UserRepository.DeleteAuthSession(ctxContext, model.AuthPurposeSignup, sessionId.String())
		_ = usecase.UserRepository.DeleteAuthEmailSession(ctxContext, model.AuthPurposeSignup, data["email"])
		return token, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Email is already registered",
			Param:   "email",
		}
	}

	err = usecase.UserRepository.DeleteAuthSession(ctxContext, model.AuthPurposeSignup, sessionId.String())
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.DeleteAuthEmailSession(ctxContext, model.AuthPurposeSignup, data["email"])
	if err != nil {
		return token, err
	}

	userId := uuid.New()
	now := time.Now().UTC()
	user := model.User{
		Id:             userId,
		Email:          data["email"],
		Fullname:       data["fullname"],
		Timezone:       "UTC",
		SkinType:       nil,
		AvatarImageId:  nil,
		Settings:       sonic.NoCopyRawMessage("{}"),
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	err = usecase.UserRepository.CreateUser(ctxContext, user)
	if err != nil {
		return token, err
	}

	token, err = util.GenerateTokenPair(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctxContext, token.AccessToken, token.RefreshToken, userId)
	if err != nil {
		return token, err
	}

	return token, nil
}

func (usecase *UserUsecase) StartLogin(ctx *fiber.Ctx, payload model.LoginStartRequest) (model.AuthStartResponse, error) {
	ctxContext := ctx.Context()

	response := model.AuthStartResponse{}

	if err := validateEmail(payload.Email); err != nil {
		return response, err
	}

	payload.Email = strings.ToLower(payload.Email)

	userId, err := usecase.UserRepository.GetUserIdByEmail(ctxContext, payload.Email)
	if err != nil {
		return response, err
	}

	sessionExists, oldSessionId, err := usecase.UserRepository.CheckAuthEmailSession(ctxContext, model.AuthPurposeLogin, payload.Email)
	if err != nil {
		return response, err
	}

	if sessionExists {
		usecase.Log.Debug("login session exists, invalidating previous code", zap.String("email", payload.Email))
		err = usecase.UserRepository.DeleteAuthSession(ctxContext, model.AuthPurposeLogin, oldSessionId)
		if err != nil {
			return response, err
		}
		err = usecase.UserRepository.DeleteAuthEmailSession(ctxContext, model.AuthPurposeLogin, payload.Email)
		if err != nil {
			return response, err
		}
	}

	code, err := util.GenerateVerificationCode()
	if err != nil {
		return response, err
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return response, err
	}

	sessionId := uuid.New()
	codeExpiresAt := time.Now().UTC().Add(5 * time.Minute).Unix()

	response.SessionId = sessionId
	response.CodeExpiresAt = codeExpiresAt

	err = usecase.sendVerificationCode(payload.Email, code, "Your glowcoach login code")
	if err != nil {
		return response, err
	}

	err = usecase.UserRepository.SetAuthSession(ctxContext, model.AuthPurposeLogin, sessionId, map[string]interface{}{
		"email":           payload.Email,
		"user_id":         userId.String(),
		"code_hash":       string(codeHash),
		"code_expires_at": codeExpiresAt,
	}, codeSessionTTL)
	if err != nil {
		return response, err
	}

	err = usecase.UserRepository.SetAuthEmailSession(ctxContext, model.AuthPurposeLogin, payload.Email, sessionId.String(), codeSessionTTL)
	if err != nil {
		return response, err
	}

	return response, nil
}

func (usecase *UserUsecase) VerifyLogin(ctx *fiber.Ctx, payload model.AuthVerifyRequest) (model.TokenResponse, error) {
	ctxContext := ctx.Context()
	token := model.TokenResponse{}

	sessionId, err := validateCodePayload(payload)
	if err != nil {
		return token, err
	}

	data, err := usecase.UserRepository.GetAuthSession(ctxContext, model.AuthPurposeLogin, sessionId)
	if err != nil {
		return token, err
	}

	err = checkCode(data, payload.Code)
	if err != nil {
		return token, err
	}

	userId, err := uuid.Parse(data["user_id"])
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.DeleteAuthSession(ctxContext, model.AuthPurposeLogin, sessionId.String())
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.DeleteAuthEmailSession(ctxContext, model.AuthPurposeLogin, data["email"])
	if err != nil {
		return token, err
	}

	token, err = util.GenerateTokenPair(userId, usecase.Config.String("JWT_SECRET_KEY"))
	if err != nil {
		return token, err
	}

	err = usecase.UserRepository.SetAuthTokenInCache(ctxContext, token.AccessToken, token.RefreshToken, userId)
	if err != nil {
		return token, err
	}

	return token, nil
}

func (usecase *UserUsecase) GetAccessToken(ctx *fiber.Ctx, userId uuid.UUID, accessToken string) error {
	hashedTokenFromCache, err := usecase.UserRepository.GetAccessTokenInCache(ctx.Context(), userId)
	if err != nil {
		return err
	}

	// Hash the token from client before comparing with cached hash
	hashedTokenFromClient := util.HashToken(accessToken)

	if hashedTokenFromClient != hashedTokenFromCache {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Authorization token is expired",
			Param:   "accessToken",
		}
	}

	return nil
}

func (usecase *UserUsecase) Logout(ctx *fiber.Ctx, userId uuid.UUID) error {
	err := usecase.UserRepository.RemoveAuthToken(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return nil
}

func (usecase *UserUsecase) GetUserInfo(ctx *fiber.Ctx, userId uuid.UUID) (model.UserResponse, error) {
	user, err := usecase.UserRepository.GetUserInfo(ctx.Context(), userId)
	if err != nil {
		return user, err
	}

	MINIO_URL := usecase.Config.String("MINIO_URL")
	MINIO_BUCKET_NAME := usecase.Config.String("MINIO_BUCKET_NAME")
	MINIO_HTTP := usecase.Config.String("MINIO_HTTP")

	if user.AvatarImage != nil {
		*user.AvatarImage = fmt.Sprintf("%s%s/%s/%s", MINIO_HTTP, MINIO_URL, MINIO_BUCKET_NAME, *user.AvatarImage)
	}

	return user, nil
}

func (usecase *UserUsecase) UpdateAvatar(ctx *fiber.Ctx, userId uuid.UUID) error {
	ctxContext := ctx.Context()

	fieldName := "avatar"
	fileHeader, err := ctx.FormFile(fieldName)
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Avatar is required to not be empty",
			Param:   fieldName,
		}
	}

	imageFile, imageSize, err := util.ValidateImage(fileHeader, fieldName)
	if err != nil {
		return err
	}

	avatarImageId := uuid.New()

	now := time.Now().UTC()

	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")

	avatarImage := model.UserAvatarImage{
		Id:             avatarImageId,
		UserId:         userId,
		Bucket:         bucketName,
		ObjectKey:      fmt.Sprintf("user/avatar/%s.webp", avatarImageId),
		MimeType:       "webp",
		Size:           imageSize,
		CreateDatetime: now,
		UpdateDatetime: now,
		CreateUserId:   userId,
		UpdateUserId:   userId,
	}

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctxContext)

	fileName, err := usecase.UserRepository.GetUserAvatar(ctxContext, tx, userId)
	if err != nil {
		return err
	}

	if fileName != "" {
		err = usecase.UserRepository.DeleteAvatarImage(ctxContext, tx, userId)
		if err != nil {
			return err
		}

		err = usecase.UserRepository.DeleteUserAvatar(ctxContext, bucketName, fileName)
		if err != nil {
			return err
		}
	}

	err = usecase.UserRepository.AddUserAvatar(ctxContext, tx, avatarImage)
	if err != nil {
		return err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	err = usecase.UserRepository.UploadUserAvatar(ctxContext, bucketName, avatarImage.ObjectKey, imageFile, imageSize)
	if err != nil {
		return err
	}

	return nil
}

func (usecase *UserUsecase) UpdateFullname(ctx *fiber.Ctx, userId uuid.UUID, payload model.FullnameUpdateRequest) error {
	ctxContext := ctx.Context()

	if payload.Fullname == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Fullname is required to not be empty",
			Param:   "fullname",
		}
	} else if len(payload.Fullname) > 40 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Fullname must be at most 40 characters",
			Param:   "fullname",
		}
	}

	now := time.Now().UTC()

	err := usecase.UserRepository.UpdateFullname(ctxContext, userId, payload.Fullname, userId, now)
	if err != nil {
		return err
	}

	return nil
}

func (usecase *UserUsecase) UpdateTimezone(ctx *fiber.Ctx, userId uuid.UUID, payload model.TimezoneUpdateRequest) error {
	ctxContext := ctx.Context()

	if payload.Timezone == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Timezone is required to not be empty",
			Param:   "timezone",
		}
	}

	_, err := time.LoadLocation(payload.Timezone)
	if err != nil {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Timezone is not a valid IANA name",
			Param:   "timezone",
		}
	}

	now := time.Now().UTC()

	err = usecase.UserRepository.UpdateTimezone(ctxContext, userId, payload.Timezone, userId, now)
	if err != nil {
		return err
	}

	return nil
}

func (usecase *UserUsecase) UpdateSkinType(ctx *fiber.Ctx, userId uuid.UUID, payload model.SkinTypeUpdateRequest) error {
	ctxContext := ctx.Context()

	skinType := strings.ToLower(payload.SkinType)
	if !SkinTypes[skinType] {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Skin type must be one of: normal, dry, oily, combination, sensitive",
			Param:   "skinType",
		}
	}

	now := time.Now().UTC()

	err := usecase.UserRepository.UpdateSkinType(ctxContext, userId, &skinType, userId, now)
	if err != nil {
		return err
	}

	return nil
}
